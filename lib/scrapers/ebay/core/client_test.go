package core

import (
	"bidsniper/lib/auction"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		fmt.Fprint(w, `<html><head><meta http-equiv="Refresh" content="0; url=/landing"></head></html>`)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil {
			fmt.Fprint(w, "no cookie")
			return
		}
		fmt.Fprintf(w, "<p>landed %s</p>", cookie.Value)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<meta http-equiv="refresh" content="0;URL='/loop'">`)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(ClientOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	before := time.Now()
	doc, err := client.Fetch(ctx, server.URL+"/start", "")
	require.NoError(t, err)
	require.Equal(t, "<p>landed abc</p>", string(doc.Body))
	require.Equal(t, server.URL+"/landing", doc.URL)
	require.False(t, doc.TimeToFirstByte.Before(before.Add(-time.Second)))

	doc, err = client.Fetch(ctx, server.URL+"/loop", "")
	require.NoError(t, err)
	require.Contains(t, string(doc.Body), "/loop")

	_, err = client.Fetch(ctx, server.URL+"/down", server.URL+"/d***")
	var aerr *auction.Error
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auction.KindUnavailable, aerr.Kind)
	require.Contains(t, aerr.Detail, "/d***")

	require.NoError(t, client.ResetSession())
	doc, err = client.Fetch(ctx, server.URL+"/landing", "")
	require.NoError(t, err)
	require.Equal(t, "no cookie", string(doc.Body))
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	client, err := NewClient(ClientOptions{Timeout: time.Second})
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), target, "")
	require.True(t, auction.IsKind(err, auction.KindNetwork))
}

func TestHostURLs(t *testing.T) {
	hosts := Hosts{Bid: "bid.example"}.WithDefaults()
	require.Equal(t, "offer.ebay.com", hosts.History)
	require.Equal(t, "http://offer.ebay.com/ws/eBayISAPI.dll?ViewBids&item=123", hosts.BidHistoryURL("123"))
	require.Equal(
		t,
		"http://bid.example/ws/eBayISAPI.dll?MfcISAPICommand=MakeBid&maxbid=1.50&quant=2&mode=1&uiid=tok&co_partnerid=2&user=me&fb=2&item=123",
		hosts.BidURL("123", "1.50", 2, "tok", "me"),
	)
	require.Equal(t, "http://my.ebay.com/ws/eBayISAPI.dll?MyeBay&CurrentPage=MyeBayWatching", hosts.WatchingURL())
}
