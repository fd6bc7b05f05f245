// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "errors"

var (
	ErrAlreadyExists      = errors.New("poll already exists")
	ErrNotInitialized     = errors.New("poll not initialized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateCandidate = errors.New("candidate already exists")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrInvalidOptionIndex = errors.New("invalid option index")
	ErrAlreadyVoted       = errors.New("vote already cast")
	ErrUnauthorized       = errors.New("unauthorized action")
	ErrNotFound           = errors.New("poll not found")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrAlreadyExists, "AlreadyExists"},
	{ErrNotInitialized, "NotInitialized"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrDuplicateCandidate, "DuplicateCandidate"},
	{ErrCapacityExceeded, "CapacityExceeded"},
	{ErrInvalidOptionIndex, "InvalidOptionIndex"},
	{ErrAlreadyVoted, "AlreadyVoted"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrNotFound, "NotFound"},
}

// Code returns the taxonomy name for err, or "" if err is not a ledger
// error
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
