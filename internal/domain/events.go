// Package domain defines events for the event-driven architecture.
// Events let the views re-render on state changes without polling the services.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Selection events
	EventSelectionChanged EventType = "selection.changed"
	EventSongListChanged  EventType = "songs.changed"
	EventCatalogError     EventType = "catalog.error"

	// Transport events
	EventTransportChanged EventType = "transport.changed"
	EventSongStarted      EventType = "transport.song_started"
	EventPlaybackError    EventType = "transport.error"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SelectionChangedEvent is published after every selection cascade mutation.
type SelectionChangedEvent struct {
	baseEvent
	Selection SelectionSnapshot
}

// Type returns the event type.
func (e SelectionChangedEvent) Type() EventType {
	return EventSelectionChanged
}

// NewSelectionChangedEvent creates a new SelectionChangedEvent.
func NewSelectionChangedEvent(selection SelectionSnapshot) SelectionChangedEvent {
	return SelectionChangedEvent{
		baseEvent: newBaseEvent(),
		Selection: selection,
	}
}

// SongListChangedEvent is published when the active song collection is replaced.
type SongListChangedEvent struct {
	baseEvent
	Songs []Song
	Mode  BrowseMode
}

// Type returns the event type.
func (e SongListChangedEvent) Type() EventType {
	return EventSongListChanged
}

// NewSongListChangedEvent creates a new SongListChangedEvent.
func NewSongListChangedEvent(songs []Song, mode BrowseMode) SongListChangedEvent {
	return SongListChangedEvent{
		baseEvent: newBaseEvent(),
		Songs:     songs,
		Mode:      mode,
	}
}

// CatalogErrorEvent is published when a catalog load fails.
type CatalogErrorEvent struct {
	baseEvent
	Op  string
	Err error
}

// Type returns the event type.
func (e CatalogErrorEvent) Type() EventType {
	return EventCatalogError
}

// NewCatalogErrorEvent creates a new CatalogErrorEvent.
func NewCatalogErrorEvent(op string, err error) CatalogErrorEvent {
	return CatalogErrorEvent{
		baseEvent: newBaseEvent(),
		Op:        op,
		Err:       err,
	}
}

// TransportChangedEvent is published after every transport transition or update.
type TransportChangedEvent struct {
	baseEvent
	State TransportState
}

// Type returns the event type.
func (e TransportChangedEvent) Type() EventType {
	return EventTransportChanged
}

// NewTransportChangedEvent creates a new TransportChangedEvent.
func NewTransportChangedEvent(state TransportState) TransportChangedEvent {
	return TransportChangedEvent{
		baseEvent: newBaseEvent(),
		State:     state,
	}
}

// SongStartedEvent is published when a song starts from position zero,
// whether chosen by the user or reached by an advance.
type SongStartedEvent struct {
	baseEvent
	Song Song
	// Auto is true when the song was reached by playback completion
	Auto bool
}

// Type returns the event type.
func (e SongStartedEvent) Type() EventType {
	return EventSongStarted
}

// NewSongStartedEvent creates a new SongStartedEvent.
func NewSongStartedEvent(song Song, auto bool) SongStartedEvent {
	return SongStartedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Auto:      auto,
	}
}

// PlaybackErrorEvent is published when the media backend fails.
type PlaybackErrorEvent struct {
	baseEvent
	Song *Song
	Err  error
}

// Type returns the event type.
func (e PlaybackErrorEvent) Type() EventType {
	return EventPlaybackError
}

// NewPlaybackErrorEvent creates a new PlaybackErrorEvent.
func NewPlaybackErrorEvent(song *Song, err error) PlaybackErrorEvent {
	return PlaybackErrorEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Err:       err,
	}
}
