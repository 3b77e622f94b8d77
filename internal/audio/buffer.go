// Package audio decodes, concatenates and writes MPEG audio streams at the
// frame level.
package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tcolgate/mp3"
)

// Buffer is the in-memory representation of a decoded MPEG stream: its frames
// in playback order plus the stream parameters shared by every frame.
type Buffer struct {
	source     string
	frames     [][]byte
	bytes      int64
	samples    int64
	duration   time.Duration
	sampleRate int
	channels   int
}

// Empty returns a buffer with no frames. Any stream can be appended to it.
func Empty() *Buffer {
	return &Buffer{}
}

// Frames returns the number of frames held by the buffer.
func (b *Buffer) Frames() int { return len(b.frames) }

// Samples returns the number of samples per channel.
func (b *Buffer) Samples() int64 { return b.samples }

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration { return b.duration }

// SampleRate returns the sample rate in Hz, or 0 for an empty buffer.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Channels returns 1 for mono streams and 2 otherwise.
func (b *Buffer) Channels() int { return b.channels }

// BitsPerSample is always 0: MPEG audio has no fixed sample depth.
func (b *Buffer) BitsPerSample() int { return 0 }

// Bitrate returns the average bitrate in bits per second.
func (b *Buffer) Bitrate() int {
	if b.duration <= 0 {
		return 0
	}
	return int(math.Round(float64(b.bytes*8) / b.duration.Seconds()))
}

// Decode reads every MPEG frame of the file at path.
func Decode(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeFrom(f, path)
}

// DecodeFrom reads every MPEG frame from r. A leading ID3v2 tag is skipped;
// path is only used in error values.
func DecodeFrom(r io.ReadSeeker, path string) (*Buffer, error) {
	if err := skipID3v2(r); err != nil {
		return nil, &UnsupportedFormatError{Path: path, Reason: err.Error()}
	}

	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int

	buf := &Buffer{source: path}
	first := true
	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Trailing bytes after the last frame (an ID3v1 tag, padding)
			// end the stream short of a full header.
			if errors.Is(err, io.ErrUnexpectedEOF) && len(buf.frames) > 0 {
				break
			}
			if len(buf.frames) == 0 {
				return nil, &UnsupportedFormatError{Path: path, Reason: err.Error()}
			}
			return nil, &CorruptedFileError{Path: path, Frame: len(buf.frames), Reason: err.Error()}
		}

		data, err := io.ReadAll(frame.Reader())
		if err != nil {
			return nil, &CorruptedFileError{Path: path, Frame: len(buf.frames), Reason: err.Error()}
		}

		// A leading Xing/Info/VBRI frame describes the source stream only.
		if first {
			first = false
			if isInfoFrame(data) {
				continue
			}
		}

		channels := 2
		if frame.Header().ChannelMode() == mp3.SingleChannel {
			channels = 1
		}
		if buf.channels == 0 {
			buf.channels = channels
		}

		buf.frames = append(buf.frames, data)
		buf.bytes += int64(len(data))
		buf.samples += int64(frame.Samples())
		buf.duration += frame.Duration()
	}

	if len(buf.frames) == 0 {
		return nil, &UnsupportedFormatError{Path: path, Reason: "no MPEG audio frames found"}
	}
	buf.sampleRate = sampleRate(buf.samples, buf.duration)
	return buf, nil
}

// Append adds the frames of other after the frames of b. Both buffers must
// share sample rate and channel count unless b is empty.
func (b *Buffer) Append(other *Buffer) error {
	if other == nil || len(other.frames) == 0 {
		return nil
	}
	if len(b.frames) > 0 && (b.sampleRate != other.sampleRate || b.channels != other.channels) {
		return &FormatMismatchError{
			Path: other.source,
			Want: describe(b.sampleRate, b.channels),
			Got:  describe(other.sampleRate, other.channels),
		}
	}
	if len(b.frames) == 0 {
		b.sampleRate = other.sampleRate
		b.channels = other.channels
	}

	b.frames = append(b.frames, other.frames...)
	b.bytes += other.bytes
	b.samples += other.samples
	b.duration += other.duration
	return nil
}

// WriteTo writes the frames of b to w in order.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, frame := range b.frames {
		n, err := w.Write(frame)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Encode writes b to path. The stream goes to a temporary file in the same
// directory which then replaces path, so a failed write leaves no output. An
// existing file keeps its permissions; a new one is created 0644.
func Encode(b *Buffer, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mp3tool-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	bw := bufio.NewWriter(tmp)
	if _, err := b.WriteTo(bw); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush frames: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp to output: %w", err)
	}

	success = true
	return nil
}

func sampleRate(samples int64, duration time.Duration) int {
	if duration <= 0 {
		return 0
	}
	return int(math.Round(float64(samples) / duration.Seconds()))
}

func describe(rate, channels int) string {
	return fmt.Sprintf("%d Hz, %d ch", rate, channels)
}
