package metadata

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnknownKey is returned for names outside the tag vocabulary.
	ErrUnknownKey = errors.New("unknown key")
	// ErrReadOnlyKey is returned when writing a tag derived from the audio stream.
	ErrReadOnlyKey = errors.New("read-only key")
)

// Name is a tag name from the fixed vocabulary.
type Name string

// Writable tags, stored in the ID3v2 container.
const (
	Album       Name = "album"
	AlbumArtist Name = "albumartist"
	Artist      Name = "artist"
	Artwork     Name = "artwork"
	Comment     Name = "comment"
	Compilation Name = "compilation"
	Composer    Name = "composer"
	DiscNumber  Name = "discnumber"
	Genre       Name = "genre"
	ISRC        Name = "isrc"
	Lyrics      Name = "lyrics"
	TotalDiscs  Name = "totaldiscs"
	TotalTracks Name = "totaltracks"
	TrackNumber Name = "tracknumber"
	TrackTitle  Name = "tracktitle"
	Year        Name = "year"
)

// Read-only tags, derived from the audio stream.
const (
	Bitrate       Name = "bitrate"
	Codec         Name = "codec"
	Length        Name = "length"
	Channels      Name = "channels"
	BitsPerSample Name = "bitspersample"
	SampleRate    Name = "samplerate"
)

var writable = []Name{
	Album, AlbumArtist, Artist, Artwork, Comment, Compilation, Composer,
	DiscNumber, Genre, ISRC, Lyrics, TotalDiscs, TotalTracks, TrackNumber,
	TrackTitle, Year,
}

var readOnly = []Name{Bitrate, Codec, Length, Channels, BitsPerSample, SampleRate}

var aliases = map[string]Name{
	"title": TrackTitle,
}

var known = func() map[Name]bool {
	m := make(map[Name]bool, len(writable)+len(readOnly))
	for _, n := range writable {
		m[n] = false
	}
	for _, n := range readOnly {
		m[n] = true
	}
	return m
}()

// Names returns every tag name, writable ones first.
func Names() []Name {
	result := make([]Name, 0, len(writable)+len(readOnly))
	result = append(result, writable...)
	return append(result, readOnly...)
}

// Lookup resolves a case-insensitive key to its tag name.
func Lookup(key string) (Name, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := aliases[k]; ok {
		return alias, nil
	}
	if _, ok := known[Name(k)]; ok {
		return Name(k), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// LookupWritable resolves key like Lookup and additionally rejects read-only
// tags with ErrReadOnlyKey.
func LookupWritable(key string) (Name, error) {
	name, err := Lookup(key)
	if err != nil {
		return "", err
	}
	if name.ReadOnly() {
		return "", fmt.Errorf("%w: %s", ErrReadOnlyKey, key)
	}
	return name, nil
}

// ReadOnly reports whether the tag reflects an intrinsic audio property.
func (n Name) ReadOnly() bool {
	return known[n]
}

// Capitalized returns the name with its first letter upper-cased.
func (n Name) Capitalized() string {
	s := string(n)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
