package audio

import (
	"io"
	"time"
)

// Codec is the codec name reported for every decoded stream.
const Codec = "mp3"

// Properties describes the intrinsic audio parameters of a file.
type Properties struct {
	Codec         string
	Bitrate       int
	Length        time.Duration
	Channels      int
	BitsPerSample int
	SampleRate    int
}

// Properties summarises the stream held by b.
func (b *Buffer) Properties() Properties {
	return Properties{
		Codec:         Codec,
		Bitrate:       b.Bitrate(),
		Length:        b.duration,
		Channels:      b.channels,
		BitsPerSample: b.BitsPerSample(),
		SampleRate:    b.sampleRate,
	}
}

// Probe decodes r and returns its audio properties.
func Probe(r io.ReadSeeker, path string) (Properties, error) {
	buf, err := DecodeFrom(r, path)
	if err != nil {
		return Properties{}, err
	}
	return buf.Properties(), nil
}
