// Package domain defines domain-specific errors.
// These errors represent catalog and playback failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the views.
var (
	// ErrNetworkFailure is returned when a catalog call could not complete.
	ErrNetworkFailure = errors.New("network failure")

	// ErrNotFound is returned when a referenced artist, album or song does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSelection is returned when a selection would break the artist/album hierarchy.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrPlaybackFailure is returned when the media backend cannot start or continue a song.
	ErrPlaybackFailure = errors.New("playback failure")
)

// Narrower causes wrapped by the typed errors below.
var (
	// ErrNoArtistSelected is returned when an album is selected without an artist.
	ErrNoArtistSelected = errors.New("no artist selected")

	// ErrBackendClosed is returned by a media backend after Close.
	ErrBackendClosed = errors.New("media backend closed")

	// ErrServiceClosed is returned when a command reaches a stopped service.
	ErrServiceClosed = errors.New("service closed")

	// ErrUnsupportedFormat is returned when the backend cannot decode a stream.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// CatalogError represents a failed catalog request.
type CatalogError struct {
	Op      string // Operation that failed (e.g., "list albums")
	Kind    error  // ErrNetworkFailure or ErrNotFound
	Status  int    // HTTP status, 0 when the request never got a response
	Message string // Server message or transport error text
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s failed: %s (status: %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("catalog %s failed: %s", e.Op, msg)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is matches the error kind so callers can use errors.Is(err, ErrNotFound).
func (e *CatalogError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewCatalogError creates a new CatalogError. 404 responses are classified as
// not found, everything else as a network failure.
func NewCatalogError(op string, status int, message string, err error) *CatalogError {
	kind := ErrNetworkFailure
	if status == 404 {
		kind = ErrNotFound
	}
	return &CatalogError{
		Op:      op,
		Kind:    kind,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// SelectionError represents a rejected selection change.
type SelectionError struct {
	Op      string // Operation that was rejected (e.g., "select album")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection %s rejected: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *SelectionError) Unwrap() error {
	return e.Err
}

// Is reports the invalid selection kind.
func (e *SelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// NewSelectionError creates a new SelectionError.
func NewSelectionError(op, message string, err error) *SelectionError {
	return &SelectionError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// PlaybackError represents a media backend failure for a song.
type PlaybackError struct {
	Op      string // Operation that failed (e.g., "open", "resume")
	SongID  string // Song being played (if any)
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	if e.SongID != "" {
		return fmt.Sprintf("playback %s failed for song '%s': %s", e.Op, e.SongID, e.Message)
	}
	return fmt.Sprintf("playback %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// Is reports the playback failure kind.
func (e *PlaybackError) Is(target error) bool {
	return target == ErrPlaybackFailure
}

// NewPlaybackError creates a new PlaybackError.
func NewPlaybackError(op, songID, message string, err error) *PlaybackError {
	return &PlaybackError{
		Op:      op,
		SongID:  songID,
		Message: message,
		Err:     err,
	}
}
