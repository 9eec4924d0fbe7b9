package htmlutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("bidsniper.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// TextRuns returns every non blank text node under node in document
// order, with whitespace collapsed.
func TextRuns(node *html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(innerWhitespace.ReplaceAllString(n.Data, " "))
			if text != "" {
				out = append(out, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return out
}

var refreshURL = regexp.MustCompile(`(?i)url\s*=\s*['"]?([^'"\s]+)`)

// MetaRefresh returns the target of a <meta http-equiv="refresh"> redirect
// in the page, if it has one.
func MetaRefresh(ctx context.Context, body []byte) (string, bool) {
	_, span := tracer.Start(ctx, "MetaRefresh")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", false
	}

	var target string
	doc.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		equiv, _ := meta.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return true
		}
		groups := refreshURL.FindStringSubmatch(meta.AttrOr("content", ""))
		if len(groups) < 2 {
			return true
		}
		target = groups[1]
		return false
	})
	if target == "" {
		return "", false
	}

	span.SetAttributes(attribute.String("target", target))
	return target, true
}
