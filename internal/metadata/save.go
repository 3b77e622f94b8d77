package metadata

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// Save writes the changed tags back into the file's ID3v2 tag. Frames that
// were not changed are carried over untouched.
func (m *Map) Save() error {
	if len(m.changed) == 0 {
		return nil
	}

	t, err := id3v2.Open(m.path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3v2 tag: %w", err)
	}
	defer t.Close()

	// UTF-8 text frames only exist from v2.4 on.
	enc := id3v2.EncodingUTF8
	if t.Version() < 4 {
		enc = id3v2.EncodingUTF16
	}
	t.SetDefaultEncoding(enc)

	for _, name := range m.changed {
		m.apply(t, name, enc)
	}

	if err := t.Save(); err != nil {
		return fmt.Errorf("save id3v2 tag: %w", err)
	}
	m.changed = nil
	return nil
}

func (m *Map) apply(t *id3v2.Tag, name Name, enc id3v2.Encoding) {
	v := m.values[name]

	switch name {
	case TrackTitle:
		setText(t, "TIT2", enc, v.Text)
	case Artist:
		setText(t, "TPE1", enc, v.Text)
	case Album:
		setText(t, "TALB", enc, v.Text)
	case Genre:
		setText(t, "TCON", enc, v.Text)
	case Year:
		// TYER in v2.3, TDRC in v2.4.
		setText(t, t.CommonID("Year"), enc, v.Text)
	case AlbumArtist:
		setText(t, "TPE2", enc, v.Text)
	case Composer:
		setText(t, "TCOM", enc, v.Text)
	case ISRC:
		setText(t, "TSRC", enc, v.Text)
	case Compilation:
		setText(t, "TCMP", enc, v.Text)
	case TrackNumber, TotalTracks:
		setText(t, "TRCK", enc, position(m.values[TrackNumber].Text, m.values[TotalTracks].Text))
	case DiscNumber, TotalDiscs:
		setText(t, "TPOS", enc, position(m.values[DiscNumber].Text, m.values[TotalDiscs].Text))
	case Comment:
		t.DeleteFrames("COMM")
		if v.Text != "" {
			t.AddCommentFrame(id3v2.CommentFrame{
				Encoding: enc,
				Language: "eng",
				Text:     v.Text,
			})
		}
	case Lyrics:
		t.DeleteFrames("USLT")
		if v.Text != "" {
			t.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding: enc,
				Language: "eng",
				Lyrics:   v.Text,
			})
		}
	case Artwork:
		t.DeleteFrames("APIC")
		if len(v.Data) > 0 {
			t.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    enc,
				MimeType:    v.MIMEType,
				PictureType: id3v2.PTFrontCover,
				Description: "Front cover",
				Picture:     v.Data,
			})
		}
	}
}

func setText(t *id3v2.Tag, id string, enc id3v2.Encoding, text string) {
	if text == "" {
		t.DeleteFrames(id)
		return
	}
	t.AddTextFrame(id, enc, text)
}

// position formats a TRCK/TPOS value ("3", "3/12" or "0/12").
func position(number, total string) string {
	switch {
	case number == "" && total == "":
		return ""
	case total == "":
		return number
	case number == "":
		return "0/" + total
	default:
		return number + "/" + total
	}
}
