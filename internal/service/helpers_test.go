package service

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

// recorder collects every event published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func newRecorder(bus *eventbus.SyncEventBus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(e domain.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *recorder) all() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	return lo.Filter(r.all(), func(e domain.Event, _ int) bool { return e.Type() == t })
}

func (r *recorder) selections() []domain.SelectionSnapshot {
	return lo.Map(r.ofType(domain.EventSelectionChanged), func(e domain.Event, _ int) domain.SelectionSnapshot {
		return e.(domain.SelectionChangedEvent).Selection
	})
}

func (r *recorder) transports() []domain.TransportState {
	return lo.Map(r.ofType(domain.EventTransportChanged), func(e domain.Event, _ int) domain.TransportState {
		return e.(domain.TransportChangedEvent).State
	})
}

func (r *recorder) started() []domain.SongStartedEvent {
	return lo.Map(r.ofType(domain.EventSongStarted), func(e domain.Event, _ int) domain.SongStartedEvent {
		return e.(domain.SongStartedEvent)
	})
}

func newTestBus() *eventbus.SyncEventBus {
	return eventbus.NewSyncEventBus(logger.NewTestLogger())
}

// makeSongs returns n songs of one album with ids s1..sn.
func makeSongs(n int) []domain.Song {
	return lo.Times(n, func(i int) domain.Song {
		return domain.Song{
			ID:       fmt.Sprintf("s%d", i+1),
			Title:    fmt.Sprintf("Song %d", i+1),
			ArtistID: "ar1",
			AlbumID:  "al1",
			Duration: 180,
		}
	})
}

func ids(songs []domain.Song) []string {
	return lo.Map(songs, func(s domain.Song, _ int) string { return s.ID })
}
