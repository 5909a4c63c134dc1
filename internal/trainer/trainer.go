// Package trainer runs background retraining of the expense
// classifier and tracks the process-wide training job state.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"grosz/internal/classifier"
	"grosz/internal/common"
	"grosz/internal/encoder"
	"grosz/internal/model"
	"grosz/internal/service"
)

// Config holds the tunables of a training run.
type Config struct {
	// MinSamples is the smallest corpus worth fitting.
	MinSamples int
	// MinCategories is the smallest label set worth fitting.
	MinCategories int
	// HoldoutEvery holds out every Nth sample for evaluation.
	HoldoutEvery int
}

// DefaultConfig returns the default training configuration. The
// minimums match the original service's viability thresholds.
func DefaultConfig() Config {
	return Config{
		MinSamples:    10,
		MinCategories: 2,
		HoldoutEvery:  5,
	}
}

// Trainer orchestrates retraining. Serving keeps reading the old
// artifact while a run is in flight; the swap at the end is atomic.
type Trainer struct {
	storage    service.Storage
	normalizer service.Normalizer
	models     *classifier.Holder
	gate       *semaphore.Weighted
	config     Config

	mu  sync.Mutex
	job model.TrainingJob
}

// New creates a trainer with the default configuration.
func New(storage service.Storage, normalizer service.Normalizer, models *classifier.Holder) *Trainer {
	return NewWithConfig(storage, normalizer, models, DefaultConfig())
}

// NewWithConfig creates a trainer with custom configuration.
func NewWithConfig(storage service.Storage, normalizer service.Normalizer, models *classifier.Holder, config Config) *Trainer {
	if config.MinSamples <= 0 {
		config.MinSamples = DefaultConfig().MinSamples
	}
	if config.MinCategories < 2 {
		config.MinCategories = DefaultConfig().MinCategories
	}
	if config.HoldoutEvery < 2 {
		config.HoldoutEvery = DefaultConfig().HoldoutEvery
	}
	return &Trainer{
		storage:    storage,
		normalizer: normalizer,
		models:     models,
		gate:       semaphore.NewWeighted(1),
		config:     config,
		job:        model.TrainingJob{Status: model.TrainingIdle},
	}
}

// Start accepts a training request and runs it in the background. If a
// run is already in progress the request is rejected with
// common.ErrTrainingInProgress, never queued.
func (t *Trainer) Start(ctx context.Context) error {
	if !t.gate.TryAcquire(1) {
		return common.ErrTrainingInProgress
	}

	t.setJob(model.TrainingJob{
		Status:    model.TrainingRunning,
		StartedAt: time.Now(),
	})

	// Once accepted, a run finishes regardless of the caller: there is
	// no cancellation, callers just stop polling.
	go t.run(context.WithoutCancel(ctx))
	return nil
}

// Status returns a snapshot of the training job state.
func (t *Trainer) Status() model.TrainingJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

// Poll returns the job state and, when it is terminal, re-arms the
// state machine to idle so the next run starts clean. The returned
// snapshot still carries the terminal status for the caller.
func (t *Trainer) Poll() model.TrainingJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.job
	if snapshot.Status.Terminal() {
		t.job = model.TrainingJob{Status: model.TrainingIdle}
	}
	return snapshot
}

// Metrics returns the full metric history with the latest successful
// accuracy pulled out for display.
func (t *Trainer) Metrics(ctx context.Context) (*service.MetricsReport, error) {
	history, err := t.storage.GetModelMetrics(ctx, 0)
	if err != nil {
		return nil, err
	}

	report := &service.MetricsReport{
		History:         history,
		HasTrainedModel: t.models.Current() != nil,
	}
	for _, metric := range history {
		if metric.Succeeded {
			report.LatestAccuracy = metric.Accuracy
			break
		}
	}
	return report, nil
}

func (t *Trainer) run(ctx context.Context) {
	defer t.gate.Release(1)

	started := t.Status().StartedAt
	err := t.trainGuarded(ctx)

	job := model.TrainingJob{StartedAt: started}
	if err != nil {
		job.Status = model.TrainingFailed
		job.Error = err.Error()
		slog.Error("training run failed", "error", err)
	} else {
		job.Status = model.TrainingCompleted
		slog.Info("training run completed", "duration", time.Since(started))
	}
	t.setJob(job)
}

// trainGuarded keeps an unexpected panic in the fit path from taking
// down the serving process.
func (t *Trainer) trainGuarded(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during training: %v", common.ErrTrainingFailed, r)
			t.recordFailure(ctx, 0, 0, err.Error())
		}
	}()
	return t.train(ctx)
}

func (t *Trainer) train(ctx context.Context) error {
	samples, err := t.storage.GetTrainingSamples(ctx)
	if err != nil {
		t.recordFailure(ctx, 0, 0, err.Error())
		return fmt.Errorf("failed to load training corpus: %w", err)
	}

	labels := make([]string, len(samples))
	distinct := make(map[string]struct{})
	for i, sample := range samples {
		labels[i] = sample.Label
		distinct[sample.Label] = struct{}{}
	}

	if len(samples) < t.config.MinSamples || len(distinct) < t.config.MinCategories {
		reason := fmt.Sprintf("insufficient data: %d samples across %d categories (need at least %d samples and %d categories)",
			len(samples), len(distinct), t.config.MinSamples, t.config.MinCategories)
		t.recordFailure(ctx, len(samples), len(distinct), reason)
		return fmt.Errorf("%w: %s", common.ErrInsufficientData, reason)
	}

	docs := make([][]string, len(samples))
	for i, sample := range samples {
		docs[i] = t.normalizer.Normalize(sample.FeatureText(), sample.Language)
	}

	labelOrder, err := t.labelOrder(ctx, distinct, labels)
	if err != nil {
		t.recordFailure(ctx, len(samples), len(distinct), err.Error())
		return err
	}

	accuracy := t.evaluate(docs, labels, labelOrder)

	enc := encoder.Fit(docs)
	artifact, err := classifier.Train(enc, docs, labels, labelOrder)
	if err != nil {
		t.recordFailure(ctx, len(samples), len(labelOrder), err.Error())
		return fmt.Errorf("%w: %v", common.ErrTrainingFailed, err)
	}

	blob, err := artifact.Encode()
	if err != nil {
		t.recordFailure(ctx, len(samples), len(labelOrder), err.Error())
		return fmt.Errorf("%w: %v", common.ErrTrainingFailed, err)
	}

	record := &model.ArtifactRecord{
		ID:          artifact.ID,
		TrainedAt:   artifact.TrainedAt,
		SampleCount: artifact.SampleCount,
		Blob:        blob,
	}
	if err := t.storage.SaveArtifact(ctx, record); err != nil {
		t.recordFailure(ctx, len(samples), len(labelOrder), err.Error())
		return fmt.Errorf("%w: %v", common.ErrTrainingFailed, err)
	}

	trainingType, previous := t.previousRun(ctx)
	notes := "initial training"
	if previous != nil {
		notes = fmt.Sprintf("accuracy change: %+.4f (%.4f -> %.4f)",
			accuracy-previous.Accuracy, previous.Accuracy, accuracy)
	}

	metric := &model.ModelMetric{
		Accuracy:      accuracy,
		SampleCount:   len(samples),
		CategoryCount: len(labelOrder),
		TrainingType:  trainingType,
		Succeeded:     true,
		Notes:         notes,
	}
	// The artifact is already durable; the run completes even if the
	// metric row cannot be written.
	if err := t.storage.AppendModelMetric(ctx, metric); err != nil {
		slog.Error("failed to append training metric", "error", err)
	}

	// The swap is the single atomic publication point: in-flight
	// predictions finish on the old snapshot.
	t.models.Swap(artifact)

	slog.Info("trained new classifier artifact",
		"artifact", artifact.ID,
		"samples", len(samples),
		"categories", len(labelOrder),
		"accuracy", accuracy)
	return nil
}

// labelOrder derives the classifier's output space from the category
// registry, keeping first-seen order so prediction tie-breaks stay
// stable. Labels missing from the registry (should not happen, since
// confirmation registers them) are appended in corpus order.
func (t *Trainer) labelOrder(ctx context.Context, distinct map[string]struct{}, labels []string) ([]string, error) {
	categories, err := t.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	order := make([]string, 0, len(distinct))
	seen := make(map[string]struct{}, len(distinct))
	for _, cat := range categories {
		if _, ok := distinct[cat.Name]; ok {
			order = append(order, cat.Name)
			seen[cat.Name] = struct{}{}
		}
	}
	for _, label := range labels {
		if _, ok := seen[label]; !ok {
			order = append(order, label)
			seen[label] = struct{}{}
		}
	}
	return order, nil
}

// evaluate estimates accuracy with a deterministic held-out split:
// every Nth sample is scored against a model fitted on the rest. Tiny
// corpora where the split would leave either side empty fall back to
// fitting and scoring on the full corpus.
func (t *Trainer) evaluate(docs [][]string, labels, labelOrder []string) float64 {
	var (
		trainDocs     [][]string
		trainLabels   []string
		holdoutDocs   [][]string
		holdoutLabels []string
	)
	for i := range docs {
		if (i+1)%t.config.HoldoutEvery == 0 {
			holdoutDocs = append(holdoutDocs, docs[i])
			holdoutLabels = append(holdoutLabels, labels[i])
		} else {
			trainDocs = append(trainDocs, docs[i])
			trainLabels = append(trainLabels, labels[i])
		}
	}

	if len(holdoutDocs) == 0 || len(trainDocs) == 0 {
		trainDocs, trainLabels = docs, labels
		holdoutDocs, holdoutLabels = docs, labels
	}

	enc := encoder.Fit(trainDocs)
	artifact, err := classifier.Train(enc, trainDocs, trainLabels, labelOrder)
	if err != nil {
		slog.Warn("holdout evaluation failed", "error", err)
		return 0
	}

	correct := 0
	for i, tokens := range holdoutDocs {
		if predicted, _ := artifact.Predict(tokens); predicted == holdoutLabels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(holdoutDocs))
}

// previousRun determines the run's training type and the last
// successful metric, if any. The first successful fit is "full"; later
// runs are "incremental" in the corpus-growth sense.
func (t *Trainer) previousRun(ctx context.Context) (model.TrainingType, *model.ModelMetric) {
	history, err := t.storage.GetModelMetrics(ctx, 0)
	if err != nil {
		slog.Warn("failed to load metric history", "error", err)
		return model.TrainingTypeFull, nil
	}
	for i := range history {
		if history[i].Succeeded {
			return model.TrainingTypeIncremental, &history[i]
		}
	}
	return model.TrainingTypeFull, nil
}

// recordFailure appends the failed run's metric row. Failures are
// recorded, never retried automatically.
func (t *Trainer) recordFailure(ctx context.Context, sampleCount, categoryCount int, reason string) {
	trainingType, _ := t.previousRun(ctx)
	metric := &model.ModelMetric{
		Accuracy:      0,
		SampleCount:   sampleCount,
		CategoryCount: categoryCount,
		TrainingType:  trainingType,
		Succeeded:     false,
		Notes:         "training failed: " + reason,
	}
	if err := t.storage.AppendModelMetric(ctx, metric); err != nil {
		slog.Error("failed to record training failure", "error", err)
	}
}

func (t *Trainer) setJob(job model.TrainingJob) {
	t.mu.Lock()
	t.job = job
	t.mu.Unlock()
}
