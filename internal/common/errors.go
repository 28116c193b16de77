// Package common defines shared constants and sentinel errors used across
// plodsync components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository / registry level errors.
	ErrNotFound          = errors.New("not found")
	ErrUnknownCollection = errors.New("unknown collection")

	// Sync cycle errors.
	ErrOffline        = errors.New("offline: remote store is not reachable")
	ErrSyncInProgress = errors.New("sync already in progress")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidPIN   = errors.New("invalid pin")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrNotAdmin     = errors.New("admin role required")
)
