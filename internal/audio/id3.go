package audio

import (
	"errors"
	"io"
)

const id3v2HeaderSize = 10

// skipID3v2 positions r after a leading ID3v2 tag, or at offset 0 when the
// stream starts without one. Tag bodies may contain bytes that look like
// frame sync words, so they must not reach the frame decoder.
func skipID3v2(r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make([]byte, id3v2HeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < id3v2HeaderSize || string(header[0:3]) != "ID3" {
		_, err := r.Seek(0, io.SeekStart)
		return err
	}

	size := int64(decodeSynchsafe(header[6:10])) + id3v2HeaderSize
	if header[5]&0x10 != 0 {
		size += id3v2HeaderSize
	}
	_, err = r.Seek(size, io.SeekStart)
	return err
}

// decodeSynchsafe decodes a 4-byte synchsafe integer (7 bits per byte).
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7f)<<21 | uint32(b[1]&0x7f)<<14 | uint32(b[2]&0x7f)<<7 | uint32(b[3]&0x7f)
}
