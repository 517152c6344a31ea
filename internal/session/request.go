package session

import (
	"net/http"
	"strings"
)

// Cookie and transport mechanics live outside this service; callers identify
// their session and user through plain headers.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
)

func ID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderSessionID))
}

func UserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}
