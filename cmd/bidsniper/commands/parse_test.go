package commands

import (
	"bidsniper/lib/testutil"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	testCases := []struct {
		name     string
		parser   string
		page     string
		expected []string
		fails    bool
	}{
		{
			name:     "page identity",
			parser:   "page",
			page:     testutil.Page("MyeBaySummary", "SignInAlertSupressor", ""),
			expected: []string{`page name: "MyeBaySummary"`, `src id: "SignInAlertSupressor"`},
		},
		{
			name:   "page without identity",
			parser: "page",
			page:   "<html><body>hello</body></html>",
			fails:  true,
		},
		{
			name:     "accepted bid",
			parser:   "bid",
			page:     testutil.Page("AcceptBid_HighBidder", "", ""),
			expected: []string{"result: success"},
		},
		{
			name:     "outbid",
			parser:   "bid",
			page:     testutil.Page("AcceptBid_Outbid", "", ""),
			expected: []string{"result: outbid"},
		},
		{
			name:     "unrecognized bid page",
			parser:   "bid",
			page:     testutil.Page("MakeBidErrorMinBidd", "", ""),
			expected: []string{"unrecognized page", "closest known page: MakeBidErrorMinBid"},
		},
		{
			name:     "bid token",
			parser:   "prebid",
			page:     testutil.Page("Place bid", "", `<input type="hidden" name="uiid" value="abc123">`),
			expected: []string{"bid token: abc123"},
		},
		{
			name:     "bid token refused",
			parser:   "prebid",
			page:     testutil.Page("MakeBidErrorCannotBidOnItem", "", ""),
			expected: []string{"result: cannotbid"},
		},
		{
			name:     "captcha",
			parser:   "login",
			page:     testutil.Page("", "Captcha.xsl", ""),
			expected: []string{"result: captcha"},
		},
		{
			name:   "unknown parser",
			parser: "item",
			page:   testutil.Page("PageViewBids", "", ""),
			fails:  true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			err := parsePage(context.Background(), &out, test.parser, []byte(test.page))
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, expected := range test.expected {
				require.Contains(t, out.String(), expected)
			}
		})
	}
}
