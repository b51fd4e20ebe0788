package widget

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	Scheme    = "countdown"
	eventHost = "event"
)

// EventURL returns the deep link that opens the editor for id.
func EventURL(id string) string {
	return Scheme + "://" + eventHost + "/" + id
}

// ParseURL reports whether raw is a countdown deep link and, if so, the
// event id it targets. A link with a missing or malformed id is still
// handled (the app falls back to its main screen) but yields no id.
func ParseURL(raw string) (id string, handled bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != Scheme || u.Host != eventHost {
		return "", false
	}
	seg := strings.Trim(u.Path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	parsed, err := uuid.Parse(seg)
	if err != nil {
		return "", true
	}
	return strings.ToUpper(parsed.String()), true
}
