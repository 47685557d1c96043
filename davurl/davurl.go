package davurl

import (
	"fmt"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	schemeDav  = "dav://"
	schemeDavs = "davs://"

	defaultMemoSize = 256
)

var memo, _ = lru.New[string, string](defaultMemoSize)

// MapScheme rewrites the dav/davs scheme prefix to its http counterpart.
// Anything else passes through untouched.
func MapScheme(raw string) string {
	if strings.HasPrefix(raw, schemeDavs) {
		return "https://" + strings.TrimPrefix(raw, schemeDavs)
	}
	if strings.HasPrefix(raw, schemeDav) {
		return "http://" + strings.TrimPrefix(raw, schemeDav)
	}
	return raw
}

// Normalize converts a webdav url into a transport safe http(s) url. The
// input is percent-decoded first and re-encoded afterwards, so normalizing an
// already normalized url yields the same string. A stray '%' that is not a
// valid escape fails the decode step and renders the url unusable.
func Normalize(raw string) (string, error) {
	if v, ok := memo.Get(raw); ok {
		return v, nil
	}
	decoded, err := url.PathUnescape(MapScheme(raw))
	if err != nil {
		return "", fmt.Errorf("decode url failed, url:%s, err:%w", raw, err)
	}
	esc := url.QueryEscape(decoded)
	esc = strings.ReplaceAll(esc, "+", "%20")
	esc = strings.ReplaceAll(esc, "%3A", ":")
	esc = strings.ReplaceAll(esc, "%2F", "/")
	_ = memo.Add(raw, esc)
	return esc, nil
}

// Host extracts the host part of a webdav url.
func Host(raw string) (string, error) {
	u, err := url.Parse(MapScheme(raw))
	if err != nil {
		return "", fmt.Errorf("parse url failed, err:%w", err)
	}
	if len(u.Host) == 0 {
		return "", fmt.Errorf("no host in url:%s", raw)
	}
	return u.Host, nil
}
