// Package translate is the usage-metered gateway in front of the upstream
// translation provider: quota reservation, per-dialect upstream calls with a
// redis-backed result cache, and history persistence.
package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wergeran/wergeran/internal/cache"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/metrics"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/quota"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage"
	"github.com/wergeran/wergeran/internal/translator"
)

// cacheTTL bounds how long a translated text is served without a fresh
// upstream call.
const cacheTTL = 24 * time.Hour

// ErrUpstreamFailed is returned when no requested dialect produced a
// translation. The reservation is released in that case, so the request
// does not count against the user's quota.
var ErrUpstreamFailed = errors.New("translation service unavailable")

// Translator is the upstream client. Satisfied by *translator.Client.
type Translator interface {
	Translate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one metered translation.
type Result struct {
	Translations  models.TranslationPair
	Status        *models.SubscriptionStatus
	TranslationID string
}

// Service coordinates quota, cache, upstream and history for one request.
type Service struct {
	log     *slog.Logger
	client  Translator
	cache   cache.Cache
	ledger  *quota.Ledger
	subs    *subscription.Service
	history storage.HistoryStore
	nowFun  func() time.Time
}

// New constructs the translate service.
func New(log *slog.Logger, client Translator, c cache.Cache, ledger *quota.Ledger,
	subs *subscription.Service, history storage.HistoryStore) *Service {
	return &Service{
		log:     log,
		client:  client,
		cache:   c,
		ledger:  ledger,
		subs:    subs,
		history: history,
		nowFun:  time.Now,
	}
}

// cacheKey addresses one translated text per dialect. Hashing keeps
// arbitrary user text out of redis key space.
func cacheKey(dialect, text string) string {
	sum := sha1.Sum([]byte(text))
	return "translation:" + dialect + ":" + hex.EncodeToString(sum[:])
}

// Translate runs one metered translation for the user. Exactly one quota
// slot is charged when at least one dialect succeeds; the slot is released
// when every dialect fails. Cache hits still count against the quota.
func (s *Service) Translate(ctx context.Context, user *models.User, text, dialect string) (*Result, error) {
	const op = "services.translate.Translate"

	reservation, err := s.ledger.Reserve(ctx, user)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			return nil, fmt.Errorf("%s: %w", op, quota.ErrQuotaExceeded)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.TranslationPair
	if dialect == models.DialectBehdini || dialect == models.DialectBoth {
		pair.Behdini = s.translateDialect(ctx, models.DialectBehdini, text)
	}
	if dialect == models.DialectSorani || dialect == models.DialectBoth {
		pair.Sorani = s.translateDialect(ctx, models.DialectSorani, text)
	}

	if pair.Empty() {
		reservation.Release(ctx)
		metrics.TranslationsTotal.WithLabelValues(dialect, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrUpstreamFailed)
	}

	entry := models.HistoryEntry{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		OriginalText: text,
		Translations: pair,
		Dialect:      dialect,
		Timestamp:    s.nowFun(),
	}
	if err := s.history.SaveEntry(ctx, entry); err != nil {
		reservation.Release(ctx)
		metrics.TranslationsTotal.WithLabelValues(dialect, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.TranslationsTotal.WithLabelValues(dialect, "success").Inc()

	status, err := s.subs.Status(ctx, user)
	if err != nil {
		// The translation already happened and is persisted; a broken
		// status read should not fail the whole request.
		s.log.Error("failed to build subscription status", sl.Err(err))
		status = nil
	}

	return &Result{
		Translations:  pair,
		Status:        status,
		TranslationID: entry.ID,
	}, nil
}

// translateDialect resolves one dialect: cache first, then upstream with
// retries, then sanitize and cache the result. Failures are logged and
// reported as an empty string; the caller decides whether the request as a
// whole failed.
func (s *Service) translateDialect(ctx context.Context, dialect, text string) string {
	key := cacheKey(dialect, text)

	var cached string
	if hit, err := s.cache.Get(key, &cached); err != nil {
		s.log.Warn("translation cache read failed", slog.String("dialect", dialect), sl.Err(err))
	} else if hit && cached != "" {
		metrics.CacheHitsTotal.Inc()
		return cached
	}

	raw, err := s.client.Translate(ctx, translator.PromptFor(dialect, text))
	if err != nil {
		s.log.Error("upstream translation failed",
			slog.String("dialect", dialect),
			sl.Err(err))
		return ""
	}

	result := translator.Sanitize(raw)
	if result == "" {
		s.log.Error("upstream returned empty translation", slog.String("dialect", dialect))
		return ""
	}

	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("translation cache write failed", slog.String("dialect", dialect), sl.Err(err))
	}
	return result
}

// TranslateWord serves the dictionary-backed word lookup: an upstream
// Behdini call without a quota charge and without a history entry.
func (s *Service) TranslateWord(ctx context.Context, word string) (string, error) {
	const op = "services.translate.TranslateWord"

	result := s.translateDialect(ctx, models.DialectBehdini, word)
	if result == "" {
		return "", fmt.Errorf("%s: %w", op, ErrUpstreamFailed)
	}
	return result, nil
}
