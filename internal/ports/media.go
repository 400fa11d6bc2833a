package ports

import (
	"context"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// MediaBackend is the single playback handle owned by the transport service.
// It abstracts the audio library and allows for testing with mocks.
//
// Only one stream is active at a time. Asynchronous signals (position, duration,
// completion, externally caused pause/play, failures) are delivered on Events,
// tagged with the generation passed to the Open call that produced them.
type MediaBackend interface {
	// Open starts loading the requested stream and returns without waiting
	// for it. The outcome arrives on Events tagged with req.Generation:
	// MediaReady once the new stream is audible, or MediaError when it cannot
	// be loaded. The current stream keeps playing until then and is left
	// untouched by a failed load. A later Open or Stop abandons a pending load,
	// and so does cancelling ctx. Open only fails when the backend is closed.
	Open(ctx context.Context, req domain.StreamRequest) error

	// Pause pauses the current stream, preserving its position.
	Pause() error

	// Resume continues the current stream from its paused position.
	Resume() error

	// Seek moves the current stream to the given position in seconds.
	Seek(seconds float64) error

	// Stop ends the current stream and abandons a pending load. It is not an
	// error when nothing is playing.
	Stop() error

	// Events returns the channel of backend signals. It is closed by Close.
	Events() <-chan domain.MediaEvent

	// Close releases the backend. Other methods return domain.ErrBackendClosed afterwards.
	Close() error
}
