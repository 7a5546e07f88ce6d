// Package input implements the Input Encoder: it turns a GLFW keysym or
// decoded character into the byte sequence written to the PTY master —
// arrow keys, backspace/delete, and other TTY-function keys get their
// escape sequences, everything else passes through as ordinary text.
package input

import "github.com/go-gl/glfw/v3.3/glfw"

// Encode translates a key press into the bytes written to the PTY master.
// appCursorMode selects application- vs normal-cursor-key encoding for the
// arrow keys. ok is false when the key carries no TTY-function meaning and
// should instead be left to the character callback (ordinary text).
func Encode(key glfw.Key, appCursorMode bool) (data []byte, ok bool) {
	switch key {
	case glfw.KeyUp:
		return arrowSeq('A', appCursorMode), true
	case glfw.KeyDown:
		return arrowSeq('B', appCursorMode), true
	case glfw.KeyRight:
		return arrowSeq('C', appCursorMode), true
	case glfw.KeyLeft:
		return arrowSeq('D', appCursorMode), true
	case glfw.KeyBackspace:
		return []byte("\x1b[3~"), true
	case glfw.KeyTab:
		return []byte{'\t'}, true
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return []byte{'\r'}, true
	case glfw.KeyEscape:
		return []byte{0x1b}, true
	case glfw.KeyDelete:
		return []byte("\x1b[3~"), true
	default:
		return nil, false
	}
}

func arrowSeq(final byte, appCursorMode bool) []byte {
	if appCursorMode {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// EncodeChar encodes an ordinary decoded character as UTF-8 bytes for the
// PTY master.
func EncodeChar(r rune) []byte {
	buf := make([]byte, 4)
	n := encodeRune(buf, r)
	return buf[:n]
}

func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	default:
		buf[0] = byte(0xF0 | (r >> 18))
		buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
		buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[3] = byte(0x80 | (r & 0x3F))
		return 4
	}
}
