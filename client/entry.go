package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davclient/davurl"
	"github.com/xxxsen/davclient/protocol"
	"github.com/xxxsen/davclient/utils"
	"go.uber.org/zap"
)

// Entry describes one addressable remote resource, file or collection. It is
// a value-like descriptor, holds no open resource and needs no disposal.
type Entry struct {
	c *Client

	// RawURL is the url the entry was created from, immutable afterwards.
	RawURL string
	// DisplayName is only set on entries produced by a directory listing,
	// never on a freshly constructed root entry.
	DisplayName string
	// Size and ContentType stay zero valued until a listing or index
	// operation fills them in.
	Size        int64
	ContentType string

	normalized string // "" when normalization failed, every operation short-circuits
	host       string
	parent     string
	urlName    string
}

// NewEntry builds the descriptor for one remote path. An url that does not
// parse at all fails here; a parseable url that cannot be normalized still
// constructs, the entry is just unusable and every operation reports failure.
func (c *Client) NewEntry(raw string) (*Entry, error) {
	host, err := davurl.Host(raw)
	if err != nil {
		return nil, fmt.Errorf("build entry failed, url:%s, err:%w", raw, err)
	}
	ent := &Entry{
		c:      c,
		RawURL: raw,
		host:   host,
	}
	if normalized, err := davurl.Normalize(raw); err == nil {
		ent.normalized = normalized
	}
	return ent, nil
}

func (e *Entry) Host() string {
	return e.host
}

// NormalizedURL is the transport form of the entry url, empty when
// normalization failed.
func (e *Entry) NormalizedURL() string {
	return e.normalized
}

// URLName is the resolved leaf name, populated on listing children.
func (e *Entry) URLName() string {
	return e.urlName
}

// Parent is the containing collection url, populated on listing children.
func (e *Entry) Parent() string {
	return e.parent
}

func (e *Entry) usable(ctx context.Context) bool {
	if len(e.normalized) != 0 {
		return true
	}
	logutil.GetLogger(ctx).Debug("entry url not normalizable, skip operation", zap.String("url", e.RawURL))
	return false
}

// IndexFileInfo probes the resource with a single PROPFIND and fills in size
// and content type metadata. True when the server returned a non empty body.
func (e *Entry) IndexFileInfo(ctx context.Context) bool {
	if !e.usable(ctx) {
		return false
	}
	raw, err := e.c.propfindRaw(ctx, e.normalized)
	if err != nil {
		logutil.GetLogger(ctx).Debug("index file info failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	if rs, err := protocol.ParseMultistatus(bytes.NewReader(raw)); err == nil && len(rs) > 0 {
		if rs[0].ContentLength > 0 {
			e.Size = rs[0].ContentLength
		}
		if len(rs[0].ContentType) > 0 {
			e.ContentType = rs[0].ContentType
		}
	}
	return len(raw) > 0
}

// Exists is a PROPFIND probe, true iff the multistatus carries at least one
// response element.
func (e *Entry) Exists(ctx context.Context) bool {
	if !e.usable(ctx) {
		return false
	}
	rs, err := e.c.propfind(ctx, e.normalized)
	if err != nil {
		logutil.GetLogger(ctx).Debug("existence probe failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	return len(rs) > 0
}

// ListFiles enumerates the immediate child files of a collection, in server
// response order. Collections (href ending in '/') are skipped, one broken
// child never aborts the rest and any failure degrades to an empty list.
func (e *Entry) ListFiles(ctx context.Context) []*Entry {
	if !e.usable(ctx) {
		return nil
	}
	rs, err := e.c.propfind(ctx, e.normalized)
	if err != nil {
		logutil.GetLogger(ctx).Debug("list files failed", zap.String("url", e.RawURL), zap.Error(err))
		return nil
	}
	base := e.normalized
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	out := make([]*Entry, 0, len(rs))
	for _, item := range rs {
		if item.IsCollection() {
			continue
		}
		name := item.Href
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		child, err := e.c.NewEntry(base + name)
		if err != nil {
			logutil.GetLogger(ctx).Debug("skip broken list entry", zap.String("href", item.Href), zap.Error(err))
			continue
		}
		child.DisplayName = name
		child.ContentType = item.ContentType
		child.Size = item.ContentLength
		child.parent = base
		child.urlName = protocol.ResolveURLName(item.Href, child.normalized, base)
		out = append(out, child)
	}
	return out
}

// MakeAsDir creates the collection unless it already exists. The existence
// probe keeps the call idempotent, a second invocation never reissues MKCOL.
func (e *Entry) MakeAsDir(ctx context.Context) bool {
	if !e.usable(ctx) {
		return false
	}
	if e.Exists(ctx) {
		return true
	}
	if err := e.c.mkcol(ctx, e.normalized); err != nil {
		logutil.GetLogger(ctx).Debug("mkcol failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	return true
}

// Download fetches the whole resource body into memory.
func (e *Entry) Download(ctx context.Context) ([]byte, bool) {
	if !e.usable(ctx) {
		return nil, false
	}
	body, err := e.c.get(ctx, e.normalized)
	if err != nil {
		logutil.GetLogger(ctx).Debug("download failed", zap.String("url", e.RawURL), zap.Error(err))
		return nil, false
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		logutil.GetLogger(ctx).Debug("read download stream failed", zap.String("url", e.RawURL), zap.Error(err))
		return nil, false
	}
	logutil.GetLogger(ctx).Debug("download finish",
		zap.String("url", e.RawURL),
		zap.String("size", humanize.IBytes(uint64(len(raw)))),
		zap.String("digest", utils.SumDigest(raw)))
	return raw, true
}

// DownloadTo streams the resource into dst. A pre-existing destination with
// replaceExisting unset fails before any network call is made.
func (e *Entry) DownloadTo(ctx context.Context, dst string, replaceExisting bool) bool {
	if !e.usable(ctx) {
		return false
	}
	if _, err := os.Stat(dst); err == nil && !replaceExisting {
		logutil.GetLogger(ctx).Debug("destination exists, skip download", zap.String("dst", dst))
		return false
	}
	body, err := e.c.get(ctx, e.normalized)
	if err != nil {
		logutil.GetLogger(ctx).Debug("download failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	defer body.Close()
	h := xxhash.New()
	if err := utils.SafeSaveIOToFile(dst, io.TeeReader(body, h)); err != nil {
		logutil.GetLogger(ctx).Debug("save download stream failed", zap.String("dst", dst), zap.Error(err))
		return false
	}
	logutil.GetLogger(ctx).Debug("download finish",
		zap.String("url", e.RawURL),
		zap.String("dst", dst),
		zap.String("digest", utils.EncodeDigest(h.Sum64())))
	return true
}

// Upload sends a local file with a single PUT. The file handle goes into the
// request as is, the body is wired exactly once.
func (e *Entry) Upload(ctx context.Context, localPath string, contentType string) bool {
	if !e.usable(ctx) {
		return false
	}
	f, err := os.Open(localPath)
	if err != nil {
		logutil.GetLogger(ctx).Debug("open upload file failed", zap.String("file", localPath), zap.Error(err))
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		logutil.GetLogger(ctx).Debug("stat upload file failed", zap.String("file", localPath), zap.Error(err))
		return false
	}
	if err := e.c.put(ctx, e.normalized, f, info.Size(), contentType); err != nil {
		logutil.GetLogger(ctx).Debug("upload failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	logutil.GetLogger(ctx).Debug("upload finish",
		zap.String("url", e.RawURL),
		zap.String("size", humanize.IBytes(uint64(info.Size()))))
	return true
}

// UploadBytes sends an in-memory buffer with a single PUT.
func (e *Entry) UploadBytes(ctx context.Context, data []byte, contentType string) bool {
	if !e.usable(ctx) {
		return false
	}
	if err := e.c.put(ctx, e.normalized, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		logutil.GetLogger(ctx).Debug("upload failed", zap.String("url", e.RawURL), zap.Error(err))
		return false
	}
	logutil.GetLogger(ctx).Debug("upload finish",
		zap.String("url", e.RawURL),
		zap.String("size", humanize.IBytes(uint64(len(data)))),
		zap.String("digest", utils.SumDigest(data)))
	return true
}
