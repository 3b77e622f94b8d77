package audio

import "bytes"

// isInfoFrame reports whether frame is a Xing, Info or VBRI header frame.
// Encoders put one in front of the audio; it carries stream totals, not sound.
func isInfoFrame(frame []byte) bool {
	if len(frame) < 4 {
		return false
	}

	offset := 4 + sideInfoSize(frame)
	if frame[1]&0x01 == 0 {
		offset += 2 // CRC
	}
	if hasTag(frame, offset, "Xing") || hasTag(frame, offset, "Info") {
		return true
	}
	return hasTag(frame, 36, "VBRI")
}

// sideInfoSize returns the Layer III side information length for the
// header at the start of frame.
func sideInfoSize(frame []byte) int {
	mpeg1 := (frame[1]>>3)&0x03 == 0x03
	mono := frame[3]>>6 == 0x03
	switch {
	case mpeg1 && mono:
		return 17
	case mpeg1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

func hasTag(frame []byte, offset int, tag string) bool {
	end := offset + len(tag)
	return end <= len(frame) && bytes.Equal(frame[offset:end], []byte(tag))
}
