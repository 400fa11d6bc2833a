//go:build (linux && cgo) || windows || darwin

package beep

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const audioAvailable = true

// output owns the speaker and the single active stream.
type output struct {
	mu sync.Mutex

	sampleRate  beep.SampleRate
	buffer      time.Duration
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
}

func newOutput(sampleRate int, buffer time.Duration) *output {
	return &output{
		sampleRate: beep.SampleRate(sampleRate),
		buffer:     buffer,
	}
}

// play replaces the active stream with a decoded one. The active stream is
// untouched when the speaker cannot be initialised.
func (o *output) play(streamer beep.StreamSeekCloser, format beep.Format, onDone func()) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		if err := speaker.Init(o.sampleRate, o.sampleRate.N(o.buffer)); err != nil {
			streamer.Close()
			return 0, fmt.Errorf("init speaker: %w", err)
		}
		o.initialized = true
	}

	o.stopLocked()

	o.streamer = streamer
	o.format = format

	var source beep.Streamer = streamer
	if format.SampleRate != o.sampleRate {
		source = beep.Resample(4, format.SampleRate, o.sampleRate, streamer)
	}
	o.ctrl = &beep.Ctrl{Streamer: source}

	speaker.Play(beep.Seq(o.ctrl, beep.Callback(func() {
		// the speaker lock is held here; hand off before touching anything else
		go onDone()
	})))

	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}

func (o *output) pause() {
	o.setPaused(true)
}

func (o *output) resume() {
	o.setPaused(false)
}

func (o *output) setPaused(paused bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = paused
	speaker.Unlock()
}

func (o *output) seek(seconds float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.streamer == nil {
		return nil
	}

	samples := o.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	samples = max(0, min(samples, o.streamer.Len()-1))

	speaker.Lock()
	defer speaker.Unlock()
	return o.streamer.Seek(samples)
}

// position returns the playback position and whether the stream is audible.
func (o *output) position() (float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.streamer == nil || o.ctrl == nil {
		return 0, false
	}

	speaker.Lock()
	pos := o.streamer.Position()
	paused := o.ctrl.Paused
	speaker.Unlock()

	return o.format.SampleRate.D(pos).Seconds(), !paused
}

func (o *output) stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
}

// stopLocked must be called with o.mu held.
func (o *output) stopLocked() {
	if o.initialized {
		// drops the old sequence so its completion callback never fires
		speaker.Clear()
	}
	if o.streamer != nil {
		o.streamer.Close()
	}
	o.streamer = nil
	o.ctrl = nil
}

func (o *output) close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	if o.initialized {
		speaker.Close()
		o.initialized = false
	}
}
