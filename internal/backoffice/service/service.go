package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Error kinds surfaced to callers. Handlers map them to responses with
// errors.Is; none of them is fatal.
var (
	ErrInviteNotFound   = errors.New("invite token not found")
	ErrInviteInvalid    = errors.New("invite token is consumed or expired")
	ErrSelfModification = errors.New("cannot modify own privileges")
	ErrUnauthorized     = errors.New("insufficient privileges")

	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Page is one page of a listing. Page numbers start at 1.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int
}

const maxPerPage = 100

// normalizePage clamps page to >= 1 and perPage to (0, maxPerPage],
// substituting def when perPage is not positive.
func normalizePage(page, perPage, def int) (limit, offset, p int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = def
	}
	perPage = min(perPage, maxPerPage)
	return perPage, (page - 1) * perPage, page
}

func nowFrom(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

// normalizeEmail lower-cases and validates a bare address such as
// "editor@elma.example". Display-name forms are rejected.
func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", ErrInvalidRequest
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", ErrInvalidRequest
	}
	return s, nil
}
