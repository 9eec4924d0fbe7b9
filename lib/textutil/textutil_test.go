package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "makebiderrorminbid", NormalizeName(" MakeBidError \n MinBid\t"))
}

func TestFold(t *testing.T) {
	testCases := []struct {
		s      string
		substr string
		index  int
	}{
		{s: `<input NAME="UIID" value="x">`, substr: `name="uiid"`, index: 7},
		{s: "abc", substr: "", index: 0},
		{s: "ab", substr: "abc", index: -1},
		{s: "\xff\xfeMyEbay", substr: "myebay", index: 2},
	}
	for _, test := range testCases {
		require.Equal(t, test.index, IndexFold(test.s, test.substr), test.s)
	}

	require.True(t, HasPrefixFold("My eBay Summary", "my ebay"))
	require.False(t, HasPrefixFold("My", "my ebay"))
	require.Equal(t, "*****", Stars("hello"))
}
