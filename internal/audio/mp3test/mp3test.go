// Package mp3test builds minimal MPEG-1 Layer III streams for tests.
package mp3test

import (
	"os"
	"path/filepath"
	"testing"
)

// SamplesPerFrame is the number of samples in one MPEG-1 Layer III frame.
const SamplesPerFrame = 1152

// Stream describes a synthetic constant-bitrate stream at 128 kbps.
type Stream struct {
	Frames     int
	Mono       bool
	SampleRate int // 44100 or 48000; 0 means 44100
	// Info prepends a LAME style Info header frame announcing Frames.
	Info bool
}

// Bytes returns the raw frames of s. Frame payloads are zero filled.
func (s Stream) Bytes() []byte {
	header := s.header()
	size := s.frameSize()

	out := make([]byte, 0, size*(s.Frames+1))
	if s.Info {
		out = append(out, s.infoFrame()...)
	}
	for i := 0; i < s.Frames; i++ {
		frame := make([]byte, size)
		copy(frame, header)
		out = append(out, frame...)
	}
	return out
}

// Samples returns the per-channel sample count of s.
func (s Stream) Samples() int64 {
	return int64(s.Frames * SamplesPerFrame)
}

// infoFrame returns the frame that Bytes prepends when s.Info is set.
func (s Stream) infoFrame() []byte {
	frame := make([]byte, s.frameSize())
	copy(frame, s.header())
	offset := 4 + 32
	if s.Mono {
		offset = 4 + 17
	}
	copy(frame[offset:], "Info")
	frame[offset+7] = 0x01 // frame count present
	n := uint32(s.Frames)
	frame[offset+8] = byte(n >> 24)
	frame[offset+9] = byte(n >> 16)
	frame[offset+10] = byte(n >> 8)
	frame[offset+11] = byte(n)
	return frame
}

// FrameSize returns the length in bytes of one frame of s.
func (s Stream) FrameSize() int {
	return s.frameSize()
}

func (s Stream) header() []byte {
	// 0xFFFB: sync, MPEG-1, Layer III, no CRC. Bitrate index 9 (128 kbps).
	rate := byte(0x90)
	if s.SampleRate == 48000 {
		rate = 0x94
	}
	mode := byte(0x64) // joint stereo
	if s.Mono {
		mode = 0xC4
	}
	return []byte{0xFF, 0xFB, rate, mode}
}

func (s Stream) frameSize() int {
	rate := 44100
	if s.SampleRate == 48000 {
		rate = 48000
	}
	return 144 * 128000 / rate
}

// WriteFile writes s into dir/name and returns the full path.
func WriteFile(t testing.TB, dir, name string, s Stream) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, s.Bytes(), 0o644); err != nil {
		t.Fatalf("write mp3 fixture: %v", err)
	}
	return path
}
