package beep

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// pcmWAV builds a mono 16-bit PCM wav file of n silent samples.
func pcmWAV(t *testing.T, sampleRate uint32, n int) []byte {
	t.Helper()
	var buf bytes.Buffer
	dataSize := uint32(n * 2)
	write := func(v any) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	buf.WriteString("RIFF")
	write(36 + dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(1)) // mono
	write(sampleRate)
	write(sampleRate * 2)
	write(uint16(2))
	write(uint16(16))
	buf.WriteString("data")
	write(dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"flac", []byte("fLaC\x00\x00\x00\x22"), formatFLAC},
		{"ogg", []byte("OggS\x00\x02"), formatVorbis},
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), formatWAV},
		{"riff without wave", []byte("RIFF\x24\x00\x00\x00AVI "), formatMP3},
		{"m4a", []byte("\x00\x00\x00\x20ftypM4A "), formatMP4},
		{"id3", []byte("ID3\x04\x00"), formatMP3},
		{"frame sync", []byte{0xff, 0xfb, 0x90, 0x64}, formatMP3},
		{"empty", nil, formatMP3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffFormat(tt.data))
		})
	}
}

func TestDecodeWAV(t *testing.T) {
	streamer, format, err := decode(pcmWAV(t, 8000, 4000))
	require.NoError(t, err)
	defer streamer.Close()

	assert.Equal(t, beep.SampleRate(8000), format.SampleRate)
	assert.Equal(t, 4000, streamer.Len())
	assert.InDelta(t, 0.5, format.SampleRate.D(streamer.Len()).Seconds(), 1e-9)

	require.NoError(t, streamer.Seek(2000))
	assert.Equal(t, 2000, streamer.Position())
}

func TestDecodeRejectsBrokenStreams(t *testing.T) {
	broken := map[string][]byte{
		"flac": []byte("fLaC not really"),
		"ogg":  []byte("OggS not really"),
		"wav":  []byte("RIFF\x04\x00\x00\x00WAVE"),
		"m4a":  []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00"),
		"mp3":  []byte("definitely not an mp3"),
	}

	for name, data := range broken {
		t.Run(name, func(t *testing.T) {
			_, _, err := decode(data)
			assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		})
	}
}
