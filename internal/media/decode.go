package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// Decoded streams are 16-bit little endian stereo
const bytesPerFrame = 4

// sniffLen is how many leading bytes DetectDecoder inspects
const sniffLen = 12

// ErrUnsupportedFormat is returned for files no decoder recognizes
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Stream is a decoded PCM stream
type Stream interface {
	io.ReadSeeker
	Length() int64
}

// Decoder decodes src resampled to sampleRate
type Decoder func(sampleRate int, src io.ReadSeeker) (Stream, error)

var decoders = map[string]Decoder{
	".mp3": func(sampleRate int, src io.ReadSeeker) (Stream, error) {
		return mp3.DecodeWithSampleRate(sampleRate, src)
	},
	".ogg": func(sampleRate int, src io.ReadSeeker) (Stream, error) {
		return vorbis.DecodeWithSampleRate(sampleRate, src)
	},
	".wav": func(sampleRate int, src io.ReadSeeker) (Stream, error) {
		return wav.DecodeWithSampleRate(sampleRate, src)
	},
}

func init() {
	decoders[".oga"] = decoders[".ogg"]
}

// SupportedExtensions lists the file extensions that can be decoded
func SupportedExtensions() []string {
	return []string{".mp3", ".ogg", ".oga", ".wav"}
}

// DecoderFor picks a decoder by file extension
func DecoderFor(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	d, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return d, nil
}

// DetectDecoder picks a decoder by file extension, then by the leading bytes
// of src. src is rewound to the start before returning.
func DetectDecoder(path string, src io.ReadSeeker) (Decoder, error) {
	if d, err := DecoderFor(path); err == nil {
		return d, nil
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(src, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}

	if d, ok := Sniff(header[:n]); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Sniff picks a decoder from the magic bytes at the start of a file
func Sniff(header []byte) (Decoder, bool) {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return decoders[".wav"], true
	case bytes.HasPrefix(header, []byte("OggS")):
		return decoders[".ogg"], true
	case bytes.HasPrefix(header, []byte("ID3")):
		return decoders[".mp3"], true
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return decoders[".mp3"], true
	}
	return nil, false
}

// StreamDuration converts a decoded stream length in bytes to play time.
// It reports false when the length is unknown.
func StreamDuration(length int64, sampleRate int) (time.Duration, bool) {
	if length <= 0 || sampleRate <= 0 {
		return 0, false
	}
	frames := length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(sampleRate), true
}

// errorStream remembers the first read error other than EOF so the monitor
// can report it as a track failure
type errorStream struct {
	io.ReadSeeker
	mu  sync.Mutex
	err error
}

func (s *errorStream) Read(p []byte) (int, error) {
	n, err := s.ReadSeeker.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	return n, err
}

// Err returns the remembered read error
func (s *errorStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
