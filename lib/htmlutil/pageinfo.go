package htmlutil

import (
	"strings"
)

// PageInfo identifies which page the site served, any field may be empty.
type PageInfo struct {
	PageName string
	PageID   string
	SrcID    string
}

const (
	pageNameMarker = `var pageName = "`
	pageIDMarker   = "Page id: "
	srcIDMarker    = "srcId: "
)

// commentID extracts an id following marker inside a comment. The id ends
// at the first dash, which may start the comment closer, and blanks
// around it are dropped.
func commentID(comment, marker string) (string, bool) {
	idx := strings.Index(comment, marker)
	if idx < 0 {
		return "", false
	}
	trailer := comment[idx+len(marker):]
	end := strings.IndexByte(trailer, '-')
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(trailer[:end]), true
}

func commentPageName(comment string) (string, bool) {
	idx := strings.Index(comment, pageNameMarker)
	if idx < 0 {
		return "", false
	}
	trailer := comment[idx+len(pageNameMarker):]
	end := strings.IndexByte(trailer, '"')
	if end < 0 {
		return "", false
	}
	return trailer[:end], true
}

// ReadPageInfo scans the comments of a page for its page name, page id and
// source id. The <title> is used as the page name when no page name marker
// exists. ok is false when nothing was found.
func ReadPageInfo(data []byte) (info PageInfo, ok bool) {
	t := NewTokenizer(data)

	var title string
	var haveTitle bool
	needName, needID, needSrc := true, true, true
	for needName || needID || needSrc {
		tag, more := t.NextTag()
		if !more {
			break
		}
		if strings.EqualFold(tag, "title") {
			title, haveTitle = t.NextText()
			continue
		}
		if !strings.HasPrefix(tag, "!--") {
			continue
		}

		switch {
		case needName && strings.Contains(tag, pageNameMarker):
			if name, found := commentPageName(tag); found {
				info.PageName = name
				needName = false
			}
		case needID && strings.Contains(tag, pageIDMarker):
			if id, found := commentID(tag, pageIDMarker); found {
				info.PageID = id
				needID = false
			}
		case needSrc && strings.Contains(tag, srcIDMarker):
			if id, found := commentID(tag, srcIDMarker); found {
				info.SrcID = id
				needSrc = false
			}
		}
	}

	if needName && haveTitle {
		info.PageName = title
		needName = false
	}
	return info, !needName || !needID || !needSrc
}
