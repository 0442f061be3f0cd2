package arxiv

import (
	"net/url"
	"strings"
)

const absBaseURL = "https://arxiv.org/abs/"

// IDFromURL derives an arXiv identifier from a paper URL.
//
// abs, pdf and html links collapse to the same id: the ".pdf" suffix and any
// version suffix are dropped, and old-style ids keep their archive prefix
// ("https://arxiv.org/pdf/hep-th/9901001v2" -> "hep-th/9901001"). URLs of any
// other shape fall back to their final path segment.
func IDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")

	for _, prefix := range []string{"/abs/", "/pdf/", "/html/"} {
		if idx := strings.Index(path, prefix); idx >= 0 {
			id := path[idx+len(prefix):]
			id = strings.TrimSuffix(id, ".pdf")
			return StripVersion(id)
		}
	}
	return lastSegment(path)
}

// StripVersion removes a trailing version suffix: "2301.00001v3" -> "2301.00001".
func StripVersion(id string) string {
	idx := strings.LastIndex(id, "v")
	if idx <= 0 || idx == len(id)-1 {
		return id
	}
	for _, c := range id[idx+1:] {
		if c < '0' || c > '9' {
			return id
		}
	}
	return id[:idx]
}

// CanonicalURL is the abstract-page URL stored as a paper's natural key.
func CanonicalURL(id string) string {
	return absBaseURL + StripVersion(id)
}
