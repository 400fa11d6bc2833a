package beep

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// Stream containers recognised by sniffFormat.
const (
	formatMP3    = "mp3"
	formatFLAC   = "flac"
	formatVorbis = "vorbis"
	formatWAV    = "wav"
	formatMP4    = "mp4"
)

// sniffFormat guesses the container from the leading bytes. Anything
// unrecognised is treated as mp3, which has no reliable signature when the
// stream starts with a bare frame.
func sniffFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return formatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return formatVorbis
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return formatWAV
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return formatMP4
	default:
		return formatMP3
	}
}

// decode picks a beep decoder for the downloaded song.
func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	kind := sniffFormat(data)
	switch kind {
	case formatFLAC:
		streamer, format, err = flac.Decode(bytes.NewReader(data))
	case formatVorbis:
		streamer, format, err = vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	case formatWAV:
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	case formatMP4:
		return nil, beep.Format{}, fmt.Errorf("%w: %s streams cannot be decoded", domain.ErrUnsupportedFormat, kind)
	default:
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedFormat, kind, err)
	}
	return streamer, format, nil
}
