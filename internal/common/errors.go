// Package common defines shared constants and sentinel errors used across
// agent and server layers of habitsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrDataLoad = errors.New("data load failure")

	// Remote probe / transport errors.
	ErrProbeTimeout     = errors.New("probe timed out")
	ErrProbeUnavailable = errors.New("remote account unavailable")
	ErrUnavailable      = errors.New("server unavailable")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrInternal masks unexpected server-side failures from clients.
	ErrInternal = errors.New("internal error")
)
