package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"grosz/internal/classifier"
	"grosz/internal/config"
	"grosz/internal/engine"
	"grosz/internal/normalize"
	"grosz/internal/service"
	"grosz/internal/storage"
	"grosz/internal/trainer"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// initModels builds the artifact holder, loading the last persisted
// artifact so predictions survive restarts.
func initModels(ctx context.Context, store service.Storage) (*classifier.Holder, error) {
	holder := classifier.NewHolder()

	record, err := store.GetLatestArtifact(ctx)
	if err != nil {
		return nil, err
	}
	if record != nil {
		artifact, err := classifier.Decode(record.Blob)
		if err != nil {
			return nil, fmt.Errorf("failed to restore artifact %s: %w", record.ID, err)
		}
		holder.Swap(artifact)
	}
	return holder, nil
}

// initEngine wires storage, normalizer, and models into the serving engine.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, *classifier.Holder, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	holder, err := initModels(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	cfg := engine.DefaultConfig()
	if threshold := viper.GetFloat64("engine.review_threshold"); threshold > 0 {
		cfg.ReviewThreshold = threshold
	}

	eng := engine.NewWithConfig(store, normalize.New(), holder, cfg)
	return eng, store, holder, nil
}

// initTrainer wires the training orchestrator over the same holder the
// engine reads from.
func initTrainer(store service.Storage, holder *classifier.Holder) *trainer.Trainer {
	cfg := trainer.DefaultConfig()
	if v := viper.GetInt("training.min_samples"); v > 0 {
		cfg.MinSamples = v
	}
	if v := viper.GetInt("training.min_categories"); v > 0 {
		cfg.MinCategories = v
	}
	if v := viper.GetInt("training.holdout_every"); v > 0 {
		cfg.HoldoutEvery = v
	}
	return trainer.NewWithConfig(store, normalize.New(), holder, cfg)
}
