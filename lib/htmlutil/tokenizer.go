package htmlutil

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

const eof = -1

// Tokenizer is a forgiving scanner over a fetched page. It only knows
// enough HTML to split tags from text, it does not build a tree.
//
// The zero value is an empty tokenizer.
type Tokenizer struct {
	data []byte
	pos  int
}

func NewTokenizer(data []byte) *Tokenizer {
	return &Tokenizer{data: data}
}

func NewStringTokenizer(s string) *Tokenizer {
	return &Tokenizer{data: []byte(s)}
}

// Reset moves the cursor back to the start of the page.
func (t *Tokenizer) Reset() {
	t.pos = 0
}

func (t *Tokenizer) Offset() int {
	return t.pos
}

func (t *Tokenizer) Seek(offset int) {
	t.pos = max(0, min(offset, len(t.data)))
}

func (t *Tokenizer) EOF() bool {
	return t.pos >= len(t.data)
}

func (t *Tokenizer) getc() int {
	if t.EOF() {
		return eof
	}
	c := t.data[t.pos]
	t.pos++
	return int(c)
}

// Find moves the cursor to the next occurrence of s, the cursor is left
// untouched when s does not occur.
func (t *Tokenizer) Find(s string) bool {
	idx := bytes.Index(t.data[t.pos:], []byte(s))
	if idx < 0 {
		return false
	}
	t.pos += idx
	return true
}

// FindByte moves the cursor to the next occurrence of c.
func (t *Tokenizer) FindByte(c byte) bool {
	idx := bytes.IndexByte(t.data[t.pos:], c)
	if idx < 0 {
		return false
	}
	t.pos += idx
	return true
}

// SkipPast moves the cursor just after the next occurrence of c.
func (t *Tokenizer) SkipPast(c byte) bool {
	if !t.FindByte(c) {
		return false
	}
	t.pos++
	return true
}

func isTagSpace(c int) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\v':
		return true
	}
	return false
}

func isCommentSpace(c int) bool {
	return isTagSpace(c) || c == '\f'
}

// NextTag returns the inside of the next tag with whitespace outside of
// quotes collapsed. Comments are returned starting with "!--". A backslash
// inside a tag copies the following byte verbatim. ok is false once the
// page has no more tags.
func (t *Tokenizer) NextTag() (tag string, ok bool) {
	tag, _, ok = t.nextTag()
	return tag, ok
}

func (t *Tokenizer) nextTag() (tag string, start int, ok bool) {
	if t.EOF() {
		return "", 0, false
	}
	c := t.getc()
	for c != eof && c != '<' {
		c = t.getc()
	}
	if c == eof {
		return "", 0, false
	}
	start = t.pos - 1

	c = t.getc()
	switch c {
	case '>':
		return "", start, true
	case eof:
		return "", 0, false
	}

	buf := []byte{byte(c)}
	comment := false
	if c == '!' {
		c2 := t.getc()
		if c2 == '>' || c2 == eof {
			return string(buf), start, true
		}
		buf = append(buf, byte(c2))
		if c2 == '-' {
			c3 := t.getc()
			if c3 == '>' || c3 == eof {
				return string(buf), start, true
			}
			buf = append(buf, byte(c3))
			comment = true
		}
	}

	if comment {
		for c = t.getc(); c != eof; c = t.getc() {
			n := len(buf)
			if c == '>' && buf[n-1] == '-' && buf[n-2] == '-' {
				return string(buf), start, true
			}
			if isCommentSpace(c) && buf[n-1] == ' ' {
				continue
			}
			buf = append(buf, byte(c))
		}
		return string(buf), start, true
	}

	quoted := false
	for c = t.getc(); c != eof; c = t.getc() {
		switch {
		case c == '\\':
			buf = append(buf, '\\')
			c = t.getc()
			if c == eof {
				return string(buf), start, true
			}
			buf = append(buf, byte(c))
		case c == '>':
			if !quoted {
				return string(buf), start, true
			}
			buf = append(buf, '>')
		case isTagSpace(c):
			if quoted {
				buf = append(buf, byte(c))
			} else if buf[len(buf)-1] != ' ' {
				buf = append(buf, ' ')
			}
		case c == '"':
			quoted = !quoted
			buf = append(buf, '"')
		default:
			buf = append(buf, byte(c))
		}
	}
	// unterminated tag, the page ends here
	return string(buf), start, true
}

func decodeEntity(name string) (rune, bool) {
	switch name {
	case "amp":
		return '&', true
	case "lt":
		return '<', true
	case "gt":
		return '>', true
	case "quot":
		return '"', true
	case "nbsp":
		return ' ', true
	}
	if !strings.HasPrefix(name, "#") || len(name) < 2 {
		return 0, false
	}
	var code int64
	var err error
	if name[1] == 'x' || name[1] == 'X' {
		code, err = strconv.ParseInt(name[2:], 16, 32)
	} else {
		code, err = strconv.ParseInt(name[1:], 10, 32)
	}
	if err != nil || code <= 0 || !utf8.ValidRune(rune(code)) {
		return 0, false
	}
	return rune(code), true
}

// soft spaces are stray latin-1 or partial utf-8 bytes that pages use
// as padding
func isSoftSpace(c byte) bool {
	switch c {
	case 0x82, 0xC2, 0xC3, 0xA0:
		return true
	}
	return false
}

func appendSpace(buf []byte) []byte {
	if len(buf) > 0 && buf[len(buf)-1] != ' ' {
		return append(buf, ' ')
	}
	return buf
}

// NextText returns the next run of text between tags, with entities
// decoded, whitespace collapsed and trimmed. Whitespace only runs are
// skipped. ok is false once the page has no more text.
func (t *Tokenizer) NextText() (text string, ok bool) {
	if t.EOF() {
		return "", false
	}

	buf := make([]byte, 0, 64)
	amp := -1
	for c := t.getc(); c != eof; c = t.getc() {
		switch {
		case c == '<':
			t.pos--
			if len(buf) > 0 {
				return string(bytes.TrimSuffix(buf, []byte{' '})), true
			}
			t.NextTag()
		case isTagSpace(c):
			buf = appendSpace(buf)
		case c == ';' && amp >= 0:
			r, known := decodeEntity(string(buf[amp:]))
			switch {
			case !known:
				buf = append(buf, ';')
			case r == ' ':
				buf = appendSpace(buf[:amp-1])
			default:
				buf = utf8.AppendRune(buf[:amp-1], r)
			}
			amp = -1
		case c == '&':
			buf = append(buf, '&')
			amp = len(buf)
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(t.data[t.pos-1:])
			switch {
			case r == '\u00a0':
				t.pos += size - 1
				buf = appendSpace(buf)
			case r != utf8.RuneError:
				buf = append(buf, t.data[t.pos-1:t.pos-1+size]...)
				t.pos += size - 1
			case isSoftSpace(byte(c)):
				buf = appendSpace(buf)
			default:
				buf = append(buf, byte(c))
			}
		default:
			buf = append(buf, byte(c))
		}
	}

	buf = bytes.TrimSuffix(buf, []byte{' '})
	if len(buf) == 0 {
		return "", false
	}
	return string(buf), true
}

// TextOf returns the first run of text in a markup fragment.
func TextOf(fragment string) string {
	text, _ := NewStringTokenizer(fragment).NextText()
	return text
}

// NthTextOf returns the nth (1 based) run of text in a markup fragment.
func NthTextOf(fragment string, n int) string {
	t := NewStringTokenizer(fragment)
	for i := 1; i < n; i++ {
		t.NextText()
	}
	text, _ := t.NextText()
	return text
}

// LeadingInt parses the leading integer of s the way atoi does, text
// without one yields 0.
func LeadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// IntOf parses the leading integer of the first run of text in a markup
// fragment.
func IntOf(fragment string) int {
	return LeadingInt(TextOf(fragment))
}
