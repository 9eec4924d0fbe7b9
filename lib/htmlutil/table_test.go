package htmlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const bidTable = `<p>before</p>
<table class="bids">
<thead><tr><th>Bidder</th><th>Amount</th></tr></thead>
<tr><td class="x"><b>alice</b></td><td>US $1.00<table><tr><td>n</td></tr></table></td></tr>
<tr></tr>
<tr><TD>bob</TD><td>US $2.50</td></tr>
</table>
<table><tr><td>second</td></tr></table>`

func TestNextRow(t *testing.T) {
	tok := NewStringTokenizer(bidTable)

	tag, ok := tok.NextTableStart()
	require.True(t, ok)
	require.Equal(t, `table class="bids"`, tag)

	var rows [][]string
	for {
		row, ok := tok.NextRow()
		if !ok {
			break
		}
		rows = append(rows, row)
	}

	expected := [][]string{
		{"Bidder", "Amount"},
		{"<b>alice</b>", "US $1.00<table><tr><td>n</td></tr></table>"},
		{},
		{"bob", "US $2.50"},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Fatal(diff)
	}

	_, ok = tok.NextTableStart()
	require.True(t, ok)
	row, ok := tok.NextRow()
	require.True(t, ok)
	require.Equal(t, []string{"second"}, row)

	_, ok = tok.NextRow()
	require.False(t, ok)
	_, ok = tok.NextTableStart()
	require.False(t, ok)
}

func TestNextCellTruncated(t *testing.T) {
	tok := NewStringTokenizer("<table><tr><td>one</td><td>two")
	_, ok := tok.NextTableStart()
	require.True(t, ok)

	cell, kind := tok.NextCell()
	require.Equal(t, Cell, kind)
	require.Equal(t, "one", cell)

	_, kind = tok.NextCell()
	require.Equal(t, TableEnd, kind)
}

func TestTagIs(t *testing.T) {
	testCases := []struct {
		tag      string
		name     string
		expected bool
	}{
		{tag: "td", name: "td", expected: true},
		{tag: `TD align="left"`, name: "td", expected: true},
		{tag: "thead", name: "th", expected: false},
		{tag: "t", name: "td", expected: false},
		{tag: "table border=0", name: "table", expected: true},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, tagIs(test.tag, test.name), test.tag)
	}
}
