package audio

import "fmt"

// UnsupportedFormatError is returned when a file holds no MPEG audio stream.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %s: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when decoding stops on a malformed frame.
type CorruptedFileError struct {
	Path   string
	Frame  int
	Reason string
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("corrupted file %s at frame %d: %s", e.Path, e.Frame, e.Reason)
}

// FormatMismatchError is returned when buffers with different stream
// parameters are concatenated.
type FormatMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("format of %s (%s) differs from previous input (%s)", e.Path, e.Got, e.Want)
}
