package outcome

import (
	"bidsniper/lib/textutil"
	"strings"
)

const (
	tokenMarker = `name="uiid"`
	valueMarker = `value="`
)

// ParseBidToken finds the bid token in the page a bid token request
// returns. The token is the value of the tag named uiid.
func ParseBidToken(body []byte) (string, bool) {
	page := string(body)
	offset := 0
	for {
		idx := textutil.IndexFold(page[offset:], tokenMarker)
		if idx < 0 {
			return "", false
		}
		at := offset + idx
		offset = at + len(tokenMarker)

		tagStart := strings.LastIndexByte(page[:at], '<')
		if tagStart < 0 {
			tagStart = 0
		}
		tagEnd := strings.IndexByte(page[tagStart:], '>')
		value := textutil.IndexFold(page[tagStart:], valueMarker)
		if tagEnd < 0 || value < 0 || value > tagEnd {
			continue
		}

		rest := page[tagStart+value+len(valueMarker):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return rest, true
		}
		return rest[:end], true
	}
}
