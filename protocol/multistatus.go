package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseMultistatus extracts one RawResponse per response element, in
// document order. The body goes through the lenient html parser on purpose:
// webdav servers in the wild emit payloads a strict xml decoder refuses, a
// single broken element must not abort the whole listing.
func ParseMultistatus(r io.Reader) ([]RawResponse, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse multistatus body failed, err:%w", err)
	}
	rs := make([]RawResponse, 0, 8)
	walkElements(doc, func(n *html.Node) bool {
		if localName(n.Data) != "response" {
			return true
		}
		rs = append(rs, RawResponse{
			Href:          elementText(n, "href"),
			DisplayName:   elementText(n, "displayname"),
			ContentType:   elementText(n, "getcontenttype"),
			ContentLength: parseLength(elementText(n, "getcontentlength")),
		})
		return false
	})
	return rs, nil
}

// ResolveURLName picks the leaf name used when composing transfer targets.
// An empty href falls back to deriving the name from the base url, relative
// to parent when one is known. When base does not start with parent the
// TrimPrefix is a no-op and the slash-trimmed base comes back as is.
func ResolveURLName(href string, base string, parent string) string {
	if len(href) != 0 {
		return href
	}
	if len(parent) != 0 {
		return strings.Trim(strings.TrimPrefix(base, parent), "/")
	}
	base = strings.Trim(base, "/")
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		return base[idx+1:]
	}
	return base
}

// walkElements visits element nodes top down, skipping the subtree when the
// callback returns false.
func walkElements(n *html.Node, cb func(*html.Node) bool) {
	if n.Type == html.ElementNode && !cb(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, cb)
	}
}

// localName strips the namespace prefix, the html parser keeps "d:href" as a
// single tag name.
func localName(tag string) string {
	if idx := strings.LastIndex(tag, ":"); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

func elementText(n *html.Node, name string) string {
	var found *html.Node
	walkElements(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c != n && localName(c.Data) == name {
			found = c
			return false
		}
		return true
	})
	if found == nil {
		return ""
	}
	var sb strings.Builder
	collectText(found, &sb)
	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func parseLength(s string) int64 {
	if len(s) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
