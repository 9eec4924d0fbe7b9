package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestMetaRefresh(t *testing.T) {
	testCases := []struct {
		page   string
		target string
		ok     bool
	}{
		{
			page:   `<html><head><meta http-equiv="Refresh" content="0; url=https://offer.ebay.com/next?a=1"></head></html>`,
			target: "https://offer.ebay.com/next?a=1",
			ok:     true,
		},
		{
			page:   `<meta HTTP-EQUIV="refresh" content="2;URL='/relative/page'">`,
			target: "/relative/page",
			ok:     true,
		},
		{
			page: `<meta http-equiv="refresh" content="30">`,
		},
		{
			page: `<meta name="viewport" content="url=nope">`,
		},
	}

	for _, test := range testCases {
		target, ok := MetaRefresh(context.Background(), []byte(test.page))
		require.Equal(t, test.ok, ok, test.page)
		require.Equal(t, test.target, target, test.page)
	}
}

func TestTextRuns(t *testing.T) {
	node, err := html.Parse(strings.NewReader(`<td><a href="#">Vintage
	   lamp</a><br>  <span>seller_1</span> <span> </span>(12)</td>`))
	require.NoError(t, err)
	require.Equal(t, []string{"Vintage lamp", "seller_1", "(12)"}, TextRuns(node))
	require.Contains(t, GetText(node), "seller_1")
}
