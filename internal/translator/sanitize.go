package translator

import (
	"regexp"
	"strings"
)

var (
	quoteRe    = regexp.MustCompile("[\"'“”]")
	preambleEn = regexp.MustCompile(`(?i)Translation:|Behdini:|Kurdish:|Badini:|Here's the translation:|In Behdini this would be:`)
	preambleKu = regexp.MustCompile(`وەرگێڕان بۆ بەهدینی:|ب بەهدینی:|وەرگێڕان:|بەهدینی:|کوردی:|بادینی:`)
	newlinesRe = regexp.MustCompile(`\n+`)
)

// Sanitize strips quote characters and known translator preambles (English
// and Kurdish), collapses newlines into single spaces and trims the result.
// This is best-effort cleanup; the output is still untrusted free text.
func Sanitize(text string) string {
	text = quoteRe.ReplaceAllString(text, "")
	text = preambleEn.ReplaceAllString(text, "")
	text = preambleKu.ReplaceAllString(text, "")
	text = newlinesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
