// Package beep plays catalog streams through the system speaker using gopxl/beep.
//
// A song is downloaded into memory before decoding so the decoders can
// seek and report the song length. Downloads run in the background; the
// previous song keeps playing until the next one is decoded.
package beep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// ErrAudioUnavailable is reported for every load in builds without audio output.
var ErrAudioUnavailable = errors.New("audio output not available in this build")

// Config holds backend settings.
type Config struct {
	// SampleRate of the speaker in Hz
	SampleRate int

	// Buffer is the speaker buffer length; larger values trade latency for fewer underruns
	Buffer time.Duration

	// PositionInterval is how often position events are emitted while playing
	PositionInterval time.Duration

	// MaxSongBytes caps the size of a downloaded song
	MaxSongBytes int64

	// HTTPClient fetches the streams (a client with StreamTimeout is used if nil)
	HTTPClient *http.Client

	// StreamTimeout bounds a single download when HTTPClient is nil
	StreamTimeout time.Duration
}

// DefaultConfig returns CD-quality settings.
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		Buffer:           100 * time.Millisecond,
		PositionInterval: 250 * time.Millisecond,
		MaxSongBytes:     200 << 20,
		StreamTimeout:    2 * time.Minute,
	}
}

// Backend implements ports.MediaBackend on top of the beep speaker.
type Backend struct {
	logger *slog.Logger
	cfg    Config
	client *http.Client
	out    *output

	mu         sync.Mutex
	events     chan domain.MediaEvent
	generation uint64
	loading    uint64
	cancelLoad context.CancelFunc
	closed     bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBackend creates a backend and starts its position reporter.
func NewBackend(logger *slog.Logger, cfg Config) *Backend {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = def.Buffer
	}
	if cfg.PositionInterval <= 0 {
		cfg.PositionInterval = def.PositionInterval
	}
	if cfg.MaxSongBytes <= 0 {
		cfg.MaxSongBytes = def.MaxSongBytes
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = def.StreamTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.StreamTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Backend{
		logger: logger,
		cfg:    cfg,
		client: client,
		out:    newOutput(cfg.SampleRate, cfg.Buffer),
		events: make(chan domain.MediaEvent, 64),
		stop:   make(chan struct{}),
	}

	b.wg.Add(1)
	go b.reportPosition()

	return b
}

// Available reports whether this build can produce sound.
func Available() bool {
	return audioAvailable
}

// Open starts downloading the requested stream and returns at once.
// A pending download of an earlier request is abandoned.
func (b *Backend) Open(ctx context.Context, req domain.StreamRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrBackendClosed
	}

	b.abandonLocked()
	loadCtx, cancel := context.WithCancel(ctx)
	b.loading = req.Generation
	b.cancelLoad = cancel

	b.wg.Add(1)
	go b.load(loadCtx, req)
	return nil
}

// abandonLocked cancels the pending download. It must be called with b.mu held.
func (b *Backend) abandonLocked() {
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
	b.loading = 0
}

// load fetches and decodes a stream, then swaps it in unless a newer Open
// or Stop came first.
func (b *Backend) load(ctx context.Context, req domain.StreamRequest) {
	defer b.wg.Done()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		size     int
	)
	data, err := b.fetch(ctx, req.URL)
	if err == nil {
		size = len(data)
		streamer, format, err = decode(data)
	}

	b.mu.Lock()
	if b.closed || b.loading != req.Generation {
		b.mu.Unlock()
		if streamer != nil {
			streamer.Close()
		}
		b.logger.Debug("stream load abandoned", slog.String("url", req.URL), slog.Uint64("generation", req.Generation))
		return
	}
	b.abandonLocked()

	var duration float64
	if err == nil {
		duration, err = b.out.play(streamer, format, func() {
			b.emit(domain.MediaEvent{Kind: domain.MediaCompleted, Generation: req.Generation})
		})
	}
	if err == nil {
		b.generation = req.Generation
	}
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("stream load failed",
			slog.String("url", req.URL),
			slog.Uint64("generation", req.Generation),
			slog.Any("error", err))
		b.emit(domain.MediaEvent{Kind: domain.MediaError, Generation: req.Generation, Err: err})
		return
	}

	b.logger.Debug("stream started",
		slog.String("url", req.URL),
		slog.Uint64("generation", req.Generation),
		slog.Float64("duration", duration),
		slog.Int("bytes", size))

	b.emit(domain.MediaEvent{Kind: domain.MediaReady, Generation: req.Generation})
	if duration > 0 {
		b.emit(domain.MediaEvent{Kind: domain.MediaDuration, Generation: req.Generation, Seconds: duration})
	}
}

func (b *Backend) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.cfg.MaxSongBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if int64(len(data)) > b.cfg.MaxSongBytes {
		return nil, fmt.Errorf("stream larger than %d bytes", b.cfg.MaxSongBytes)
	}
	return data, nil
}

// Pause pauses the current stream.
func (b *Backend) Pause() error {
	if b.isClosed() {
		return domain.ErrBackendClosed
	}
	b.out.pause()
	return nil
}

// Resume resumes the current stream.
func (b *Backend) Resume() error {
	if b.isClosed() {
		return domain.ErrBackendClosed
	}
	b.out.resume()
	return nil
}

// Seek moves the current stream position.
func (b *Backend) Seek(seconds float64) error {
	if b.isClosed() {
		return domain.ErrBackendClosed
	}
	return b.out.seek(seconds)
}

// Stop ends the current stream and abandons a pending download.
func (b *Backend) Stop() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return domain.ErrBackendClosed
	}
	b.abandonLocked()
	b.mu.Unlock()

	b.out.stop()
	return nil
}

// Events returns the event channel.
func (b *Backend) Events() <-chan domain.MediaEvent {
	return b.events
}

// Close stops playback and pending downloads, then closes the event channel.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return domain.ErrBackendClosed
	}
	b.closed = true
	b.abandonLocked()
	b.mu.Unlock()

	close(b.stop)
	b.wg.Wait()
	b.out.close()

	b.mu.Lock()
	close(b.events)
	b.mu.Unlock()
	return nil
}

func (b *Backend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// emit never blocks: the speaker callback must not stall the audio thread.
func (b *Backend) emit(ev domain.MediaEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("media event dropped", slog.String("kind", ev.Kind.String()))
	}
}

func (b *Backend) reportPosition() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.PositionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			pos, playing := b.out.position()
			if !playing {
				continue
			}
			b.mu.Lock()
			gen := b.generation
			b.mu.Unlock()
			b.emit(domain.MediaEvent{Kind: domain.MediaPosition, Generation: gen, Seconds: pos})
		}
	}
}

// Verify that Backend implements the MediaBackend interface
var _ ports.MediaBackend = (*Backend)(nil)
