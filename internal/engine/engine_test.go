package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grosz/internal/classifier"
	"grosz/internal/common"
	"grosz/internal/encoder"
	"grosz/internal/model"
	"grosz/internal/normalize"
	"grosz/internal/service"
	"grosz/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, service.Storage, *classifier.Holder) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	holder := classifier.NewHolder()
	return New(store, normalize.New(), holder), store, holder
}

// trainedArtifact fits a small bilingual corpus so prediction paths
// have a real model to work against.
func trainedArtifact(t *testing.T) *classifier.Artifact {
	t.Helper()

	n := normalize.New()
	raw := []struct {
		text  string
		lang  string
		label string
	}{
		{"tankowanie paliwa Orlen", "pl", "Fuel"},
		{"diesel na stacji Shell", "pl", "Fuel"},
		{"benzyna BP autostrada", "pl", "Fuel"},
		{"filled up the tank at Shell", "en", "Fuel"},
		{"zakupy spożywcze Biedronka", "pl", "Groceries"},
		{"warzywa i owoce na rynku", "pl", "Groceries"},
		{"weekly groceries at Lidl", "en", "Groceries"},
		{"mleko chleb masło", "pl", "Groceries"},
		{"bilet do kina", "pl", "Entertainment"},
		{"netflix monthly subscription", "en", "Entertainment"},
	}

	docs := make([][]string, len(raw))
	labels := make([]string, len(raw))
	for i, r := range raw {
		docs[i] = n.Normalize(r.text, r.lang)
		labels[i] = r.label
	}

	enc := encoder.Fit(docs)
	artifact, err := classifier.Train(enc, docs, labels, []string{"Fuel", "Groceries", "Entertainment"})
	require.NoError(t, err)
	return artifact
}

func TestEngine_AddExpense_NoModelFallsBackToDefault(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "mystery purchase",
		Amount:      12.50,
	})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultCategory, expense.Category)
	assert.Nil(t, expense.Confidence, "expense recorded before any model must be unscored")
	assert.False(t, expense.NeedsReview, "unscored expenses are never flagged for review")
	assert.NotZero(t, expense.ID)
}

func TestEngine_AddExpense_ManualCategory(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "monthly gym membership",
		Category:    "health  and fitness",
		Amount:      49.99,
	})
	require.NoError(t, err)

	assert.Equal(t, "Health And Fitness", expense.Category)
	require.NotNil(t, expense.Confidence)
	assert.Equal(t, 1.0, *expense.Confidence)
	assert.False(t, expense.NeedsReview)

	// The category is registered.
	cat, err := store.GetCategoryByName(ctx, "Health And Fitness")
	require.NoError(t, err)
	require.NotNil(t, cat)

	// Manual entry does not grow the corpus.
	count, err := store.CountTrainingSamples(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngine_AddExpense_InvalidManualCategory(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.AddExpense(context.Background(), AddExpenseRequest{
		Description: "something",
		Category:    "   ",
	})
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestEngine_AddExpense_PredictedCategoryGating(t *testing.T) {
	eng, _, holder := newTestEngine(t)
	holder.Swap(trainedArtifact(t))
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "tankowanie paliwa",
		Vendor:      "Orlen",
		Language:    "pl",
		Amount:      230.00,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fuel", expense.Category)
	require.NotNil(t, expense.Confidence)
	assert.Greater(t, *expense.Confidence, 0.0)
	assert.LessOrEqual(t, *expense.Confidence, 1.0)

	// The review flag must agree with the threshold, whatever the
	// exact confidence came out to.
	assert.Equal(t, *expense.Confidence < DefaultReviewThreshold, expense.NeedsReview)
}

// strongFuelArtifact fits a corpus where the fuel phrasing has been
// confirmed many times over, which pushes a matching prediction into
// the high confidence band.
func strongFuelArtifact(t *testing.T) *classifier.Artifact {
	t.Helper()

	n := normalize.New()
	var (
		docs   [][]string
		labels []string
	)
	add := func(text, label string, count int) {
		for i := 0; i < count; i++ {
			docs = append(docs, n.Normalize(text, "pl"))
			labels = append(labels, label)
		}
	}
	add("tankowanie paliwa Orlen", "Fuel", 15)
	add("tankowanie paliwa Shell", "Fuel", 5)
	add("paliwo na stacji BP", "Fuel", 5)
	add("zakupy spożywcze Biedronka", "Groceries", 10)
	add("warzywa i owoce na rynku", "Groceries", 5)
	add("mleko chleb masło", "Groceries", 5)
	add("bilet do kina", "Entertainment", 5)
	add("opłata za parking", "Entertainment", 5)

	enc := encoder.Fit(docs)
	artifact, err := classifier.Train(enc, docs, labels, []string{"Fuel", "Groceries", "Entertainment"})
	require.NoError(t, err)
	return artifact
}

func TestEngine_AddExpense_HighConfidenceSkipsReview(t *testing.T) {
	eng, _, holder := newTestEngine(t)
	holder.Swap(strongFuelArtifact(t))
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "tankowanie paliwa",
		Vendor:      "Orlen",
		Language:    "pl",
		Amount:      240.00,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fuel", expense.Category)
	require.NotNil(t, expense.Confidence)
	assert.GreaterOrEqual(t, *expense.Confidence, 0.80)
	assert.False(t, expense.NeedsReview)
	assert.Equal(t, model.BandHigh, model.BandFor(*expense.Confidence))
}

func TestEngine_Predict_NoModel(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Predict(context.Background(), "anything", "", "en")
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestEngine_Predict_ThresholdFromConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	holder := classifier.NewHolder()
	holder.Swap(trainedArtifact(t))

	// A threshold of 1.0 flags everything short of certainty.
	eng := NewWithConfig(store, normalize.New(), holder, Config{ReviewThreshold: 1.0})

	prediction, err := eng.Predict(context.Background(), "bilet do kina", "", "pl")
	require.NoError(t, err)
	if prediction.Confidence < 1.0 {
		assert.True(t, prediction.NeedsReview)
	}
}

func TestEngine_Confirm_AppendsSampleAndPins(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "parking w centrum",
		Vendor:      "SPP",
		Language:    "pl",
		Amount:      8.00,
	})
	require.NoError(t, err)

	confirmed, err := eng.Confirm(ctx, expense.ID, "transport")
	require.NoError(t, err)

	assert.Equal(t, "Transport", confirmed.Category)
	require.NotNil(t, confirmed.Confidence)
	assert.Equal(t, 1.0, *confirmed.Confidence)
	assert.False(t, confirmed.NeedsReview)

	// Storage agrees with the returned snapshot.
	stored, err := store.GetExpenseByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "Transport", stored.Category)

	samples, err := store.GetTrainingSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "Transport", samples[0].Label)
	assert.Equal(t, "parking w centrum", samples[0].Description)
	assert.Equal(t, "SPP", samples[0].Vendor)
	assert.Equal(t, expense.ID, samples[0].ExpenseID)

	// Confirming again appends another sample; the log is history,
	// not state.
	_, err = eng.Confirm(ctx, expense.ID, "Transport")
	require.NoError(t, err)
	count, err := store.CountTrainingSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEngine_Confirm_UnknownExpense(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Confirm(context.Background(), 12345, "Fuel")
	assert.ErrorIs(t, err, common.ErrExpenseNotFound)
}

func TestEngine_Confirm_InvalidCategory(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Confirm(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestEngine_Update_FieldEditWithoutCategoryChange(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "lunch",
		Amount:      15.00,
	})
	require.NoError(t, err)

	newDescription := "team lunch downtown"
	newAmount := 18.50
	updated, err := eng.Update(ctx, expense.ID, UpdateExpenseRequest{
		Description: &newDescription,
		Amount:      &newAmount,
	})
	require.NoError(t, err)

	assert.Equal(t, newDescription, updated.Description)
	assert.Equal(t, newAmount, updated.Amount)
	assert.Equal(t, expense.Category, updated.Category)

	// No category change, no training signal.
	count, err := store.CountTrainingSamples(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngine_Update_CategoryChangeIsCorrection(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "kino cinema city",
		Language:    "pl",
		Amount:      35.00,
	})
	require.NoError(t, err)

	newDescription := "bilety do kina cinema city"
	category := "Entertainment"
	updated, err := eng.Update(ctx, expense.ID, UpdateExpenseRequest{
		Description: &newDescription,
		Category:    &category,
	})
	require.NoError(t, err)

	assert.Equal(t, "Entertainment", updated.Category)
	require.NotNil(t, updated.Confidence)
	assert.Equal(t, 1.0, *updated.Confidence)

	// The sample captures the edited text, not the original.
	samples, err := store.GetTrainingSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, newDescription, samples[0].Description)
	assert.Equal(t, "Entertainment", samples[0].Label)
}

func TestEngine_Update_SameCategoryIsNotCorrection(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "groceries",
		Category:    "Groceries",
		Amount:      50.00,
	})
	require.NoError(t, err)

	category := "Groceries"
	_, err = eng.Update(ctx, expense.ID, UpdateExpenseRequest{Category: &category})
	require.NoError(t, err)

	count, err := store.CountTrainingSamples(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "re-stating the current category must not append a sample")
}

func TestEngine_ReviewQueue(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	low := 0.40
	high := 0.95
	require.NoError(t, store.SaveExpense(ctx, &model.Expense{
		Date: time.Now(), Description: "uncertain thing", Category: "Other",
		Confidence: &low, NeedsReview: true,
	}))
	require.NoError(t, store.SaveExpense(ctx, &model.Expense{
		Date: time.Now(), Description: "confident thing", Category: "Fuel",
		Confidence: &high, NeedsReview: false,
	}))

	queue, err := eng.ReviewQueue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "uncertain thing", queue[0].Description)

	// Confirming clears the expense from the queue.
	_, err = eng.Confirm(ctx, queue[0].ID, "Fuel")
	require.NoError(t, err)

	queue, err = eng.ReviewQueue(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestEngine_RegisterCategory(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	cat, err := eng.RegisterCategory(ctx, "  eating out ")
	require.NoError(t, err)
	assert.Equal(t, "Eating Out", cat.Name)

	_, err = eng.RegisterCategory(ctx, "")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestEngine_Confirm_Concurrent(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	expense, err := eng.AddExpense(ctx, AddExpenseRequest{
		Description: "ambiguous purchase",
		Amount:      20.00,
	})
	require.NoError(t, err)

	categories := []string{"Fuel", "Groceries"}
	var wg sync.WaitGroup
	for _, category := range categories {
		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			_, err := eng.Confirm(ctx, expense.ID, category)
			assert.NoError(t, err)
		}(category)
	}
	wg.Wait()

	// Last writer wins on the expense; both verdicts land in the log.
	final, err := store.GetExpenseByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Contains(t, categories, final.Category)

	count, err := store.CountTrainingSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
