package models

import "time"

// Requested translation dialects.
const (
	DialectBehdini = "behdini"
	DialectSorani  = "sorani"
	DialectBoth    = "both"
)

// TranslationPair holds the per-dialect results of one translate request.
// A dialect that was not requested, or failed while the other succeeded,
// is left empty.
type TranslationPair struct {
	Behdini string `json:"behdini"`
	Sorani  string `json:"sorani"`
}

// Empty reports whether no dialect produced a translation.
func (p TranslationPair) Empty() bool {
	return p.Behdini == "" && p.Sorani == ""
}

// HistoryEntry records one successful translate request, owned by its user.
type HistoryEntry struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	OriginalText string          `json:"original_text"`
	Translations TranslationPair `json:"translations"`
	Dialect      string          `json:"dialect"`
	Timestamp    time.Time       `json:"timestamp"`
}
