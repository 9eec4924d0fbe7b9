package htmlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func collectTags(t *Tokenizer) []string {
	var tags []string
	for {
		tag, ok := t.NextTag()
		if !ok {
			return tags
		}
		tags = append(tags, tag)
	}
}

func collectTexts(t *Tokenizer) []string {
	var texts []string
	for {
		text, ok := t.NextText()
		if !ok {
			return texts
		}
		texts = append(texts, text)
	}
}

func TestNextTag(t *testing.T) {
	testCases := []struct {
		page     string
		expected []string
	}{
		{
			page:     `<td   class="a"\n>x</td>`,
			expected: []string{`td class="a"\n`, "/td"},
		},
		{
			page:     "<a\n\thref=\"x > y\"  title='z'>",
			expected: []string{`a href="x > y" title='z'`},
		},
		{
			page:     `<a title="one  two">`,
			expected: []string{`a title="one  two"`},
		},
		{
			page:     `<a b=\>c>`,
			expected: []string{`a b=\>c`},
		},
		{
			page:     "<!-- var pageName = \"PageViewBids\";\n\n   -->",
			expected: []string{"!-- var pageName = \"PageViewBids\";\n\n --"},
		},
		{
			page:     "<!DOCTYPE html><>",
			expected: []string{"!DOCTYPE html", ""},
		},
		{
			page:     "text only",
			expected: nil,
		},
		{
			page:     `<p>hello<a href="x`,
			expected: []string{"p", `a href="x`},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, collectTags(NewStringTokenizer(test.page)))
		if diff != "" {
			t.Fatalf("%q: %s", test.page, diff)
		}
	}
}

func TestNextText(t *testing.T) {
	testCases := []struct {
		page     string
		expected []string
	}{
		{
			page:     "<b>  Current \n bid: </b><i>US $1.00</i>",
			expected: []string{"Current bid:", "US $1.00"},
		},
		{
			page:     "<p>a &amp; b &lt;c&gt; &quot;d&quot;</p>",
			expected: []string{`a & b <c> "d"`},
		},
		{
			page:     "<p>x&nbsp;&nbsp;y&#65;&#x42;</p>",
			expected: []string{"x yAB"},
		},
		{
			page:     "<p>&bogus; &#;</p>",
			expected: []string{"&bogus; &#;"},
		},
		{
			page:     "<p>\xa0 soft\xc2\xa0space\x82</p><p>   </p><p>caf\xc3\xa9 \xe2\x82\xac5</p>",
			expected: []string{"soft space", "caf\xc3\xa9 \xe2\x82\xac5"},
		},
		{
			page:     "<a href=\"<b>\">link</a><!-- hidden <text> -->tail",
			expected: []string{"link", "tail"},
		},
		{
			page:     "",
			expected: nil,
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, collectTexts(NewStringTokenizer(test.page)))
		if diff != "" {
			t.Fatalf("%q: %s", test.page, diff)
		}
	}
}

func TestTokenizerReset(t *testing.T) {
	tok := NewStringTokenizer("<p>one</p><p>two</p>")
	first := collectTexts(tok)
	require.True(t, tok.EOF())

	tok.Reset()
	require.Equal(t, first, collectTexts(tok))
}

func TestFind(t *testing.T) {
	tok := NewStringTokenizer(`<div id="BHCtBidLabel"><span>Item number:</span> <span>123</span></div>`)
	require.True(t, tok.Find(`"BHCtBidLabel"`))
	require.True(t, tok.SkipPast('>'))

	label, _ := tok.NextText()
	number, _ := tok.NextText()
	require.Equal(t, "Item number:", label)
	require.Equal(t, "123", number)

	offset := tok.Offset()
	require.False(t, tok.Find("missing"))
	require.Equal(t, offset, tok.Offset())
}

func TestFragments(t *testing.T) {
	cell := `<span>Member Id:</span> <a href="#">bidder_1</a>`
	require.Equal(t, "Member Id:", TextOf(cell))
	require.Equal(t, "bidder_1", NthTextOf(cell, 2))
	require.Equal(t, "", NthTextOf(cell, 3))

	require.Equal(t, 12, IntOf("<b>12 items</b>"))
	require.Equal(t, 0, IntOf("<b>none</b>"))
	require.Equal(t, -3, LeadingInt("  -3x"))
}
