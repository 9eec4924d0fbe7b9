package htmlutil

import "strings"

// CellKind tells what NextCell stopped at.
type CellKind int

const (
	Cell CellKind = iota
	RowEnd
	TableEnd
)

// tagIs reports whether tag is the opening (or closing, with a leading
// slash) tag called name, attributes allowed.
func tagIs(tag, name string) bool {
	if len(tag) < len(name) || !strings.EqualFold(tag[:len(name)], name) {
		return false
	}
	return len(tag) == len(name) || isTagSpace(int(tag[len(name)]))
}

// NextTableStart moves past the next <table> tag and returns it.
func (t *Tokenizer) NextTableStart() (string, bool) {
	for {
		tag, ok := t.NextTag()
		if !ok {
			return "", false
		}
		if tagIs(tag, "table") {
			return tag, true
		}
	}
}

// NextCell returns the raw markup of the next cell in the current table.
// Tables nested inside a cell are part of the cell.
func (t *Tokenizer) NextCell() (string, CellKind) {
	nesting := 1
	start := t.pos
	for {
		tag, tagStart, ok := t.nextTag()
		if !ok {
			return "", TableEnd
		}
		switch {
		case nesting == 1 && (tagIs(tag, "td") || tagIs(tag, "th")):
			start = t.pos
		case nesting == 1 && (strings.EqualFold(tag, "/td") || strings.EqualFold(tag, "/th")):
			return string(t.data[start:tagStart]), Cell
		case nesting == 1 && strings.EqualFold(tag, "/tr"):
			return "", RowEnd
		case strings.EqualFold(tag, "/table"):
			nesting--
			if nesting == 0 {
				return "", TableEnd
			}
		case tagIs(tag, "table"):
			nesting++
		}
	}
}

// NextRow returns the raw markup of every cell in the next row of the
// current table. ok is false at the end of the table.
func (t *Tokenizer) NextRow() (row []string, ok bool) {
	row = []string{}
	for {
		cell, kind := t.NextCell()
		switch kind {
		case Cell:
			row = append(row, cell)
		case RowEnd:
			return row, true
		case TableEnd:
			if len(row) == 0 {
				return nil, false
			}
			return row, true
		}
	}
}
