package translate

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wergeran/wergeran/internal/cache"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/quota"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage/memory"
	"github.com/wergeran/wergeran/internal/translator"
)

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type fixture struct {
	svc    *Service
	client *MockTranslator
	store  *memory.Storage
	user   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	subs := subscription.New(log, store, store, store, store)
	require.NoError(t, subs.SeedPlans(ctx))
	ledger := quota.NewLedger(log, store, store)

	client := &MockTranslator{}
	svc := New(log, client, cache.NewMemory(), ledger, subs, store)

	user := &models.User{ID: "u1", Email: "a@b.c", Status: models.StatusActive}
	require.NoError(t, store.CreateUser(ctx, user))

	return &fixture{svc: svc, client: client, store: store, user: user}
}

func TestTranslate_BothDialects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectBehdini, "hello")).
		Return("سڵاڤ", nil).Once()
	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectSorani, "hello")).
		Return("سڵاو", nil).Once()

	res, err := f.svc.Translate(ctx, f.user, "hello", models.DialectBoth)
	require.NoError(t, err)
	assert.Equal(t, "سڵاڤ", res.Translations.Behdini)
	assert.Equal(t, "سڵاو", res.Translations.Sorani)
	assert.NotEmpty(t, res.TranslationID)
	require.NotNil(t, res.Status)
	assert.Equal(t, 9, res.Status.RemainingTranslations)

	// History entry persisted under the returned id.
	entry, err := f.store.EntryByID(ctx, res.TranslationID)
	require.NoError(t, err)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "hello", entry.OriginalText)
	assert.Equal(t, models.DialectBoth, entry.Dialect)

	f.client.AssertExpectations(t)
}

func TestTranslate_SingleDialectOnlyCallsOne(t *testing.T) {
	f := newFixture(t)

	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectSorani, "tree")).
		Return("دار", nil).Once()

	res, err := f.svc.Translate(context.Background(), f.user, "tree", models.DialectSorani)
	require.NoError(t, err)
	assert.Empty(t, res.Translations.Behdini)
	assert.Equal(t, "دار", res.Translations.Sorani)

	f.client.AssertExpectations(t)
}

func TestTranslate_PartialFailureStillCharges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectBehdini, "water")).
		Return("ئاڤ", nil).Once()
	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectSorani, "water")).
		Return("", assert.AnError).Once()

	res, err := f.svc.Translate(ctx, f.user, "water", models.DialectBoth)
	require.NoError(t, err)
	assert.Equal(t, "ئاڤ", res.Translations.Behdini)
	assert.Empty(t, res.Translations.Sorani)

	// One dialect succeeded, so the slot stays charged.
	assert.Equal(t, 9, remainingToday(t, f))
}

func TestTranslate_AllFailReleasesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, mock.Anything).
		Return("", assert.AnError).Twice()

	_, err := f.svc.Translate(ctx, f.user, "hello", models.DialectBoth)
	assert.ErrorIs(t, err, ErrUpstreamFailed)

	// No charge and no history entry survived.
	entries, err := f.store.ListEntriesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	remaining := remainingToday(t, f)
	assert.Equal(t, 10, remaining)
}

func TestTranslate_QuotaExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, mock.Anything).Return("باش", nil)

	for i := 0; i < 10; i++ {
		_, err := f.svc.Translate(ctx, f.user, "hello", models.DialectBehdini)
		require.NoError(t, err)
	}

	_, err := f.svc.Translate(ctx, f.user, "hello", models.DialectBehdini)
	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
}

func TestTranslate_CacheHitSkipsUpstreamButCharges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectBehdini, "bread")).
		Return("نان", nil).Once()

	_, err := f.svc.Translate(ctx, f.user, "bread", models.DialectBehdini)
	require.NoError(t, err)

	// Second request is served from the cache: no further upstream call,
	// but the quota is still charged.
	res, err := f.svc.Translate(ctx, f.user, "bread", models.DialectBehdini)
	require.NoError(t, err)
	assert.Equal(t, "نان", res.Translations.Behdini)
	assert.Equal(t, 8, res.Status.RemainingTranslations)

	f.client.AssertExpectations(t)
}

func TestTranslate_SanitizesUpstreamOutput(t *testing.T) {
	f := newFixture(t)

	f.client.On("Translate", mock.Anything, mock.Anything).
		Return(`Translation: "سڵاڤ"`, nil).Once()

	res, err := f.svc.Translate(context.Background(), f.user, "hi", models.DialectBehdini)
	require.NoError(t, err)
	assert.Equal(t, "سڵاڤ", res.Translations.Behdini)
}

func TestTranslateWord_NoQuotaCharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.On("Translate", mock.Anything, translator.PromptFor(models.DialectBehdini, "dar")).
		Return("دار", nil).Once()

	word, err := f.svc.TranslateWord(ctx, "dar")
	require.NoError(t, err)
	assert.Equal(t, "دار", word)

	assert.Equal(t, 10, remainingToday(t, f))

	// No history entry either.
	entries, err := f.store.ListEntriesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func remainingToday(t *testing.T, f *fixture) int {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := quota.NewLedger(log, f.store, f.store)
	remaining, err := ledger.Remaining(context.Background(), f.user)
	require.NoError(t, err)
	return remaining
}
