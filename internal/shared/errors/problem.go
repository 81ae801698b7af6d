// Package errors renders RFC 7807 problem documents for the canteen API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document. Domain-specific members such
// as availability shortfalls travel in Extensions.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with key set. The receiver's map is never shared.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// New builds a problem for a type not covered by the templates below.
func New(status int, typ, title string) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeBadRequest   = "/problems/bad-request"
)

var (
	ErrNotFound     = New(http.StatusNotFound, TypeNotFound, "Resource Not Found")
	ErrValidation   = New(http.StatusBadRequest, TypeValidation, "Validation Error")
	ErrBadRequest   = New(http.StatusBadRequest, TypeBadRequest, "Bad Request")
	ErrConflict     = New(http.StatusConflict, TypeConflict, "Conflict")
	ErrInternal     = New(http.StatusInternalServerError, TypeInternal, "Internal Server Error")
	ErrUnauthorized = New(http.StatusUnauthorized, TypeUnauthorized, "Unauthorized")
	ErrForbidden    = New(http.StatusForbidden, TypeForbidden, "Forbidden")
)
