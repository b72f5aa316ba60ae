package content

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	imgTagRe    = regexp.MustCompile(`(?i)<img[^>]*>`)
	srcAttrRe   = regexp.MustCompile(`(?i)\bsrc\s*=\s*"([^"]*)"`)
	idAttrRe    = regexp.MustCompile(`(?i)\bdata-image-id\s*=\s*"(\d+)"`)
	anyTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	lineSpaceRe = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

// Codec translates between the editable markup form and the stored
// plain-text-with-token form of a document.
type Codec struct {
	resolver *URLResolver
}

func NewCodec(resolver *URLResolver) *Codec {
	return &Codec{resolver: resolver}
}

// Encode converts normalized markup to the storable text form. Each inline
// image is resolved against images by its data-image-id attribute, falling
// back to a URL match under the resolver's normalization rules; matched
// images become [IMG:<id>] tokens in place, unmatched images are dropped
// silently. All other markup is stripped, <br> markers become newlines.
func (c *Codec) Encode(markup string, images []ImageRef) string {
	s := imgTagRe.ReplaceAllStringFunc(markup, func(tag string) string {
		if img, ok := c.resolveTag(tag, images); ok {
			return Token(img.ID)
		}
		return ""
	})
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = anyTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = lineSpaceRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Decode converts stored text back to editable markup. Each token becomes an
// inline image whose source is the resolved metadata URL and which carries
// the id as an attribute so a later encode pass can re-resolve it; tokens
// without metadata are dropped. Everything else is emitted verbatim, with
// newlines converted back to <br> markers.
func (c *Codec) Decode(text string, images []ImageRef) string {
	var b strings.Builder
	last := 0
	for _, m := range scanTokens(text) {
		b.WriteString(escapeText(text[last:m.start]))
		if img, ok := findImage(images, m.id); ok {
			b.WriteString(`<img src="` + html.EscapeString(c.resolver.Normalize(img.URL)) + `" data-image-id="` + strconv.FormatInt(img.ID, 10) + `"`)
			if img.Name != "" {
				b.WriteString(` alt="` + html.EscapeString(img.Name) + `"`)
			}
			b.WriteString(`>`)
		}
		last = m.end
	}
	b.WriteString(escapeText(text[last:]))
	return b.String()
}

func (c *Codec) resolveTag(tag string, images []ImageRef) (ImageRef, bool) {
	if m := idAttrRe.FindStringSubmatch(tag); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			if img, ok := findImage(images, id); ok {
				return img, true
			}
		}
	}
	m := srcAttrRe.FindStringSubmatch(tag)
	if m == nil {
		return ImageRef{}, false
	}
	src := html.UnescapeString(m[1])
	for _, img := range images {
		if c.resolver.Equal(src, img.URL) {
			return img, true
		}
	}
	return ImageRef{}, false
}

func escapeText(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
