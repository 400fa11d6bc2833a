package beep

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/testutil"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PositionInterval = 10 * time.Millisecond
	cfg.MaxSongBytes = 64
	return NewBackend(logger.NewTestLogger(), cfg)
}

func request(url string, gen uint64) domain.StreamRequest {
	return domain.StreamRequest{URL: url, Generation: gen}
}

// nextEvent waits for the next backend event.
func nextEvent(t *testing.T, b *Backend) domain.MediaEvent {
	t.Helper()
	select {
	case ev, ok := <-b.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no media event")
	}
	return domain.MediaEvent{}
}

// hangingServer never answers until the request is cancelled.
func hangingServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv
}

func TestOpenRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such song", http.StatusNotFound)
	}))
	defer srv.Close()

	b := newTestBackend(t)
	defer b.Close()

	require.NoError(t, b.Open(context.Background(), request(srv.URL+"/api/v1/songs/x/stream", 1)))

	ev := nextEvent(t, b)
	assert.Equal(t, domain.MediaError, ev.Kind)
	assert.Equal(t, uint64(1), ev.Generation)
	require.Error(t, ev.Err)
	assert.Contains(t, ev.Err.Error(), "status 404")
}

func TestOpenRejectsOversizedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, string(make([]byte, 65)))
	}))
	defer srv.Close()

	b := newTestBackend(t)
	defer b.Close()

	require.NoError(t, b.Open(context.Background(), request(srv.URL, 1)))

	ev := nextEvent(t, b)
	assert.Equal(t, domain.MediaError, ev.Kind)
	require.Error(t, ev.Err)
	assert.Contains(t, ev.Err.Error(), "larger than 64 bytes")
}

func TestOpenRejectsUndecodableStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "definitely not an mp3")
	}))
	defer srv.Close()

	b := newTestBackend(t)
	defer b.Close()

	require.NoError(t, b.Open(context.Background(), request(srv.URL, 1)))

	ev := nextEvent(t, b)
	assert.Equal(t, domain.MediaError, ev.Kind)
	assert.ErrorIs(t, ev.Err, domain.ErrUnsupportedFormat)
}

func TestOpenHonoursContext(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Open(ctx, request("http://127.0.0.1:1/stream", 1)))

	ev := nextEvent(t, b)
	assert.Equal(t, domain.MediaError, ev.Kind)
	assert.ErrorIs(t, ev.Err, context.Canceled)
}

func TestOpenDoesNotWaitForTheDownload(t *testing.T) {
	srv := hangingServer(t)

	b := newTestBackend(t)
	defer b.Close()

	returned := make(chan error, 1)
	go func() {
		returned <- b.Open(context.Background(), request(srv.URL, 1))
	}()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Open waited for the stream")
	}
}

func TestNewerOpenAbandonsPendingDownload(t *testing.T) {
	hanging := hangingServer(t)
	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	b := newTestBackend(t)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Open(ctx, request(hanging.URL, 1)))
	require.NoError(t, b.Open(ctx, request(missing.URL, 2)))

	// only the newer request reports back
	ev := nextEvent(t, b)
	assert.Equal(t, domain.MediaError, ev.Kind)
	assert.Equal(t, uint64(2), ev.Generation)

	select {
	case ev := <-b.Events():
		t.Fatalf("unexpected event %s for generation %d", ev.Kind, ev.Generation)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopAbandonsPendingDownload(t *testing.T) {
	srv := hangingServer(t)

	b := newTestBackend(t)
	require.NoError(t, b.Open(context.Background(), request(srv.URL, 1)))
	require.NoError(t, b.Stop())

	// Close waits for the download goroutine, which only ends once cancelled
	closed := make(chan error, 1)
	go func() { closed <- b.Close() }()
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending download was not cancelled")
	}

	for ev := range b.Events() {
		t.Fatalf("unexpected event %s for an abandoned download", ev.Kind)
	}
}

func TestCloseStopsReporter(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreHTTPTestGoroutines()...)

	b := newTestBackend(t)
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Close(), domain.ErrBackendClosed)
	assert.ErrorIs(t, b.Pause(), domain.ErrBackendClosed)
	assert.ErrorIs(t, b.Stop(), domain.ErrBackendClosed)
	assert.ErrorIs(t, b.Open(context.Background(), request("http://x", 1)), domain.ErrBackendClosed)

	_, ok := <-b.Events()
	assert.False(t, ok)
}

func TestControlsWithoutStreamAreNoops(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	assert.NoError(t, b.Pause())
	assert.NoError(t, b.Resume())
	assert.NoError(t, b.Seek(10))
	assert.NoError(t, b.Stop())
}

func TestDefaultClientHasTimeout(t *testing.T) {
	b := NewBackend(nil, Config{StreamTimeout: 3 * time.Second})
	defer b.Close()
	assert.Equal(t, 3*time.Second, b.client.Timeout)

	b2 := NewBackend(nil, Config{})
	defer b2.Close()
	assert.Equal(t, DefaultConfig().StreamTimeout, b2.client.Timeout)
}
