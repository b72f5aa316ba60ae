package content

import (
	"regexp"
	"strings"
)

var (
	figcaptionRe = regexp.MustCompile(`(?is)<figcaption[^>]*>.*?</figcaption>`)
	figureRe     = regexp.MustCompile(`(?i)</?figure[^>]*>`)
	brVariantRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEdgeRe  = regexp.MustCompile(`(?i)</?(?:p|div)[^>]*>`)
	brSpacingRe  = regexp.MustCompile(`[ \t]*<br>[ \t]*`)
	brRunRe      = regexp.MustCompile(`(?:<br>){3,}`)
	imgBrRunRe   = regexp.MustCompile(`(<img[^>]*>)(?:<br>){2,}`)
	leadingBrRe  = regexp.MustCompile(`^(?:<br>)+`)
	trailingBrRe = regexp.MustCompile(`(?:<br>)+$`)
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalize canonicalizes rich-text markup produced by the editing surfaces
// so the codec sees one comparable form. Captions are discarded (they are
// not part of the stored model), block boundaries become single <br>
// markers, and redundant breaks are collapsed. Pure transform, idempotent.
func Normalize(markup string) string {
	s := strings.ReplaceAll(markup, "\r", "")
	// Raw newlines inside markup are insignificant whitespace.
	s = strings.ReplaceAll(s, "\n", " ")
	s = figcaptionRe.ReplaceAllString(s, "")
	s = figureRe.ReplaceAllString(s, "")
	s = brVariantRe.ReplaceAllString(s, "<br>")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = blockEdgeRe.ReplaceAllString(s, "<br>")
	s = brSpacingRe.ReplaceAllString(s, "<br>")
	s = brRunRe.ReplaceAllString(s, "<br><br>")
	s = imgBrRunRe.ReplaceAllString(s, "$1<br>")
	s = leadingBrRe.ReplaceAllString(s, "")
	s = trailingBrRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
