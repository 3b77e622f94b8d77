// Package metadata loads, edits and saves the tag map of an MP3 file.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"mp3tool/internal/audio"
)

// Value is the content of one tag. Artwork carries Data, every other tag Text.
type Value struct {
	Text     string
	Data     []byte
	MIMEType string
}

// Empty reports whether the value holds nothing worth displaying.
func (v Value) Empty() bool {
	return strings.TrimSpace(v.Text) == "" && len(v.Data) == 0
}

func (v Value) String() string {
	if len(v.Data) > 0 {
		mime := v.MIMEType
		if mime == "" {
			mime = "application/octet-stream"
		}
		return fmt.Sprintf("<%s, %d bytes>", mime, len(v.Data))
	}
	return v.Text
}

// Map is the tag map of one file. Changes are kept in memory until Save.
type Map struct {
	path    string
	values  map[Name]Value
	changed []Name
}

// Load reads the ID3 tags and the audio properties of the file at path.
// A file without any tag yields a map holding only the audio properties.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	props, err := audio.Probe(f, path)
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	m := &Map{path: path, values: make(map[Name]Value)}
	m.setProperties(props)

	meta, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return m, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}
	if meta.FileType() != tag.MP3 {
		return nil, &audio.UnsupportedFormatError{Path: path, Reason: fmt.Sprintf("%s tags in an MPEG stream", meta.FileType())}
	}
	m.setTags(meta)
	return m, nil
}

// Path returns the file the map was loaded from.
func (m *Map) Path() string {
	return m.path
}

// Get returns the value of a tag and whether it is present and non-empty.
func (m *Map) Get(name Name) (Value, bool) {
	v, ok := m.values[name]
	if !ok || v.Empty() {
		return Value{}, false
	}
	return v, true
}

// Set assigns a tag in memory. Read-only tags are rejected with ErrReadOnlyKey
// and names outside the vocabulary with ErrUnknownKey.
func (m *Map) Set(name Name, value Value) error {
	readOnly, ok := known[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	if readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlyKey, name)
	}

	m.values[name] = value
	for _, n := range m.changed {
		if n == name {
			return nil
		}
	}
	m.changed = append(m.changed, name)
	return nil
}

// Changed returns the tags assigned since the map was loaded, in first
// assignment order.
func (m *Map) Changed() []Name {
	result := make([]Name, len(m.changed))
	copy(result, m.changed)
	return result
}

func (m *Map) setProperties(p audio.Properties) {
	m.values[Codec] = Value{Text: p.Codec}
	m.values[Bitrate] = Value{Text: positiveInt(p.Bitrate)}
	m.values[Channels] = Value{Text: positiveInt(p.Channels)}
	m.values[BitsPerSample] = Value{Text: positiveInt(p.BitsPerSample)}
	m.values[SampleRate] = Value{Text: positiveInt(p.SampleRate)}
	if p.Length > 0 {
		m.values[Length] = Value{Text: strconv.FormatFloat(p.Length.Seconds(), 'f', 2, 64)}
	}
}

func (m *Map) setTags(meta tag.Metadata) {
	m.values[TrackTitle] = Value{Text: strings.TrimSpace(meta.Title())}
	m.values[Artist] = Value{Text: strings.TrimSpace(meta.Artist())}
	m.values[Album] = Value{Text: strings.TrimSpace(meta.Album())}
	m.values[AlbumArtist] = Value{Text: strings.TrimSpace(meta.AlbumArtist())}
	m.values[Composer] = Value{Text: strings.TrimSpace(meta.Composer())}
	m.values[Genre] = Value{Text: strings.TrimSpace(meta.Genre())}
	m.values[Comment] = Value{Text: strings.TrimSpace(meta.Comment())}
	m.values[Lyrics] = Value{Text: meta.Lyrics()}
	m.values[Year] = Value{Text: positiveInt(meta.Year())}

	track, totalTracks := meta.Track()
	m.values[TrackNumber] = Value{Text: positiveInt(track)}
	m.values[TotalTracks] = Value{Text: positiveInt(totalTracks)}

	disc, totalDiscs := meta.Disc()
	m.values[DiscNumber] = Value{Text: positiveInt(disc)}
	m.values[TotalDiscs] = Value{Text: positiveInt(totalDiscs)}

	raw := meta.Raw()
	m.values[Compilation] = Value{Text: rawText(raw, "TCMP", "TCP")}
	m.values[ISRC] = Value{Text: rawText(raw, "TSRC", "TRC")}

	if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
		m.values[Artwork] = Value{Data: pic.Data, MIMEType: pic.MIMEType}
	}
}

func rawText(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func positiveInt(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
