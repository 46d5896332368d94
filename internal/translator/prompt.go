package translator

import (
	"fmt"

	"github.com/wergeran/wergeran/internal/models"
)

// BehdiniPrompt renders the extensive Behdini style guide around the source
// text. The orthography and grammar rules are a product decision and must
// stay as they are.
func BehdiniPrompt(text string) string {
	return fmt.Sprintf(`
تۆ پسپۆرەکێ وەرگێڕانێ یێ شارەزایی د زاراڤێ بەهدینی دا. وەرگێڕانا تە دڤێت دروست وەکی خەلکێ دەڤەرا بەهدینان (دهۆک، زاخۆ، ئاکرێ، ئامێدیێ) دئاخڤن بیت.

رێنڤیس و رێزمانا دروست یا بەهدینی:

١. رێنڤیسا دروست یا پەیڤێن بنەڕەتی:
- "دڤێت" نە "دبێت/دەڤێت"
- "هندەک" نە "هەندێک/هندێک"
- "چەوا" نە "چاوا"
- "کیڤە" نە "کیفە"
- "ئێک" نە "یەک"
- "تشت" نە "شت"
- "هەمی" نە "هەموو"
- "ژی" نە "جی"
- "کەنگی" نە "کەنگێ"
- "نوکە" نە "نها/ئێستا"

٢. دەمێن کاری:
دەمێ نوکە:
- "دئاخڤم" نە "دئاخفم"
- "دبێژم" نە "دبیژم"
- "دبینم" نە "دبینیم"
- "دخوینم" نە "دخوینیم"
نەرێکرن: "ناخوینم" نە "ناخوینیم"

دەمێ داهاتی:
- "دێ بێژم" نە "دێ بیژم"
- "دێ بینم" نە "دێ بینیم"
نەرێکرن: "نابێژم" نە "نابیژم"

٣. جهناڤ و خودانی:
جهناڤێن کەسی:
- "ئەز، تۆ، ئەو" (سەربەخۆ)
- "من، تە، وی/وێ" (خودانی)
نموونە:
- "کتێبا من" نە "کتێبێ من"
- "مالا مە" نە "مالێ مە"
- "براێ وی" نە "برایێ وی"

٤. قەیدێن دەمی و جهی:
- "ل ڤێرێ" نە "لڤێرە"
- "ل وێرێ" نە "لوێرە"
- "د ناڤ دا" نە "دناڤدا"
- "د گەل" نە "دگەل"
- "ژ بۆ" نە "ژبۆ"

٥. گرێدانا پەیڤان:
- "ئەڤ کتێبە" نە "ئەڤکتێبە"
- "ئەڤ جارە" نە "ئەڤجارە"
- "ئەڤ رۆژە" نە "ئەڤرۆژە"

دەقێ بۆ وەرگێڕانێ: "%s"

تکایە:
١. تنێ وەرگێڕانێ بدە، بێ هیچ روونکرن یان زێدەکرن
٢. دلنیابە کو رێنڤیس و رێزمانا بەهدینی یا دروست هاتیە بکارئینان
٣. وەرگێڕانێ وەکی ئاخفتنا رۆژانە یا خەلکێ دەڤەرێ بکە`, text)
}

// SoraniPrompt renders the minimal direct-translation instruction.
func SoraniPrompt(text string) string {
	return fmt.Sprintf("Translate the following text to Sorani Kurdish, providing ONLY the translation without any additional commentary or explanations:\n\n\"%s\"", text)
}

// PromptFor returns the prompt builder output for one dialect.
func PromptFor(dialect, text string) string {
	if dialect == models.DialectSorani {
		return SoraniPrompt(text)
	}
	return BehdiniPrompt(text)
}
