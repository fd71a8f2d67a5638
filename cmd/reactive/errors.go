package main

import rerrors "github.com/vango-dev/reactive/internal/errors"

func newUsageError(detail string) *rerrors.Error {
	return rerrors.New("E160").
		WithDetail(detail).
		WithSuggestion("Run with --help to see the accepted flags")
}
