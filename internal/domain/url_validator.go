package domain

import (
	"strconv"
	"strings"
	"time"
)

// URLValidator gates the public stream endpoint.
//
// Only the expiry is checked. The token is accepted but never compared to
// anything, so a token captured from one URL works with any other asset or
// expiry until that expiry passes.
type URLValidator struct {
	now func() time.Time
}

func NewURLValidator() *URLValidator {
	return &URLValidator{now: time.Now}
}

// Validate reports whether expires is a base-10 epoch-ms value strictly in
// the future. Malformed input yields false. Presence of token and expires is
// checked by the caller.
func (v *URLValidator) Validate(_, expires string) bool {
	exp, err := strconv.ParseInt(strings.TrimSpace(expires), 10, 64)
	if err != nil {
		return false
	}
	return v.now().UnixMilli() < exp
}
