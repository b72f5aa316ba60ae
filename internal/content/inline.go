package content

import (
	"html"
	"strconv"
)

// InlineImage is one <img> element found in markup, with its byte span.
type InlineImage struct {
	Start int
	End   int
	Src   string
	ID    int64 // from data-image-id, or 0 when absent
}

// FindInlineImages lists every inline image element in markup, left to
// right.
func FindInlineImages(markup string) []InlineImage {
	var out []InlineImage
	for _, loc := range imgTagRe.FindAllStringIndex(markup, -1) {
		tag := markup[loc[0]:loc[1]]
		img := InlineImage{Start: loc[0], End: loc[1]}
		if m := srcAttrRe.FindStringSubmatch(tag); m != nil {
			img.Src = html.UnescapeString(m[1])
		}
		if m := idAttrRe.FindStringSubmatch(tag); m != nil {
			img.ID, _ = strconv.ParseInt(m[1], 10, 64)
		}
		out = append(out, img)
	}
	return out
}
