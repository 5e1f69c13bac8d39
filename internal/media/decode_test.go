package media

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"
)

func TestDecoderFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"media/track1.mp3", false},
		{"media/TRACK1.MP3", false},
		{"media/lullaby.ogg", false},
		{"media/lullaby.oga", false},
		{"media/bombings.wav", false},
		{"media/cover.png", true},
		{"media/noext", true},
	}

	for _, test := range tests {
		_, err := DecoderFor(test.path)
		if (err != nil) != test.wantErr {
			t.Errorf("DecoderFor(%q) error = %v, wantErr %v", test.path, err, test.wantErr)
		}
		if test.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("DecoderFor(%q) expected ErrUnsupportedFormat, got %v", test.path, err)
		}
	}
}

func TestSupportedExtensionsHaveDecoders(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		if _, err := DecoderFor("x" + ext); err != nil {
			t.Errorf("Expected decoder for %s, got %v", ext, err)
		}
	}
}

func TestStreamDuration(t *testing.T) {
	tests := []struct {
		length     int64
		sampleRate int
		expected   time.Duration
		known      bool
	}{
		{44100 * 4, 44100, time.Second, true},
		{44100 * 4 * 90, 44100, 90 * time.Second, true},
		{48000 * 2, 48000, 500 * time.Millisecond, true},
		{0, 44100, 0, false},
		{-1, 44100, 0, false},
		{100, 0, 0, false},
	}

	for _, test := range tests {
		d, known := StreamDuration(test.length, test.sampleRate)
		if d != test.expected || known != test.known {
			t.Errorf("StreamDuration(%d, %d) = %v, %v, expected %v, %v",
				test.length, test.sampleRate, d, known, test.expected, test.known)
		}
	}
}

type failingReader struct {
	io.ReadSeeker
	err error
}

func (r failingReader) Read(p []byte) (int, error) {
	return 0, r.err
}

func TestErrorStream(t *testing.T) {
	clean := &errorStream{ReadSeeker: bytes.NewReader([]byte("abc"))}
	if _, err := io.ReadAll(clean); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if clean.Err() != nil {
		t.Errorf("Expected EOF not to be remembered, got %v", clean.Err())
	}

	boom := errors.New("corrupt frame")
	broken := &errorStream{ReadSeeker: failingReader{bytes.NewReader(nil), boom}}
	buf := make([]byte, 8)
	broken.Read(buf)
	broken.Read(buf)
	if !errors.Is(broken.Err(), boom) {
		t.Errorf("Expected remembered error, got %v", broken.Err())
	}
}

func sameDecoder(a, b Decoder) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		header   []byte
		expected string
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVE"), ".wav"},
		{"ogg", []byte("OggS\x00\x02"), ".ogg"},
		{"mp3 with tag", []byte("ID3\x04\x00"), ".mp3"},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, ".mp3"},
		{"riff but not wave", []byte("RIFF\x24\x00\x00\x00AVI "), ""},
		{"png", []byte("\x89PNG\r\n\x1a\n"), ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Sniff(tt.header)
			if ok != (tt.expected != "") {
				t.Fatalf("Sniff() ok = %v, expected a decoder for %q", ok, tt.expected)
			}
			if ok && !sameDecoder(d, decoders[tt.expected]) {
				t.Errorf("Sniff() picked the wrong decoder, expected %s", tt.expected)
			}
		})
	}
}

func TestDetectDecoder(t *testing.T) {
	content := []byte("OggS\x00\x02rest of the page")

	src := bytes.NewReader(content)
	d, err := DetectDecoder("media/mislabeled.bin", src)
	if err != nil {
		t.Fatalf("DetectDecoder() error = %v", err)
	}
	if !sameDecoder(d, decoders[".ogg"]) {
		t.Error("Expected the ogg decoder for an ogg file with a wrong extension")
	}
	if pos, _ := src.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("Expected source rewound to 0, got %d", pos)
	}

	d, err = DetectDecoder("media/track.wav", bytes.NewReader(content))
	if err != nil || !sameDecoder(d, decoders[".wav"]) {
		t.Errorf("Expected the extension to win, got err %v", err)
	}

	_, err = DetectDecoder("media/notes.txt", bytes.NewReader([]byte("hello")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
