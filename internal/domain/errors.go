package domain

import "errors"

// Общие ошибки домена. Конкретные причины оборачиваются через %w.
var (
	ErrInvalidParams           = errors.New("invalid creation params")
	ErrMissingCredential       = errors.New("generation credential is not configured")
	ErrUpstreamFailed          = errors.New("upstream generation failed")
	ErrInvalidUpstreamResponse = errors.New("upstream returned a non-conforming book")
	ErrNoPages                 = errors.New("generated book has no pages")
	ErrBookNotFound            = errors.New("book not found")
)
