package content

import (
	"regexp"
	"strings"
)

var dupSchemeRe = regexp.MustCompile(`^(https?://)(?:https?://)+`)

// URLResolver canonicalizes stored asset addresses before they are compared
// or rendered. The backend has historically emitted addresses with a
// duplicated scheme prefix and with an extraneous /api path segment before
// /uploads/; both forms must resolve to the same address.
type URLResolver struct {
	AssetBase string
}

// NewURLResolver derives the asset-server base from the API base address by
// stripping a trailing /api segment.
func NewURLResolver(apiBase string) *URLResolver {
	base := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	base = strings.TrimSuffix(base, "/api")
	return &URLResolver{AssetBase: base}
}

func (r *URLResolver) Normalize(raw string) string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return ""
	}
	addr = dupSchemeRe.ReplaceAllString(addr, "$1")
	addr = strings.Replace(addr, "/api/uploads/", "/uploads/", 1)
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		base := strings.TrimRight(r.AssetBase, "/")
		if !strings.HasPrefix(addr, "/") {
			addr = "/" + addr
		}
		addr = base + addr
	}
	return addr
}

func (r *URLResolver) Equal(a, b string) bool {
	return r.Normalize(a) == r.Normalize(b)
}
