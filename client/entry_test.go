package client

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davclient/credential"
)

func newDavServer(t *testing.T, h gin.HandlerFunc) (*httptest.Server, *int32) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hits := new(int32)
	r.NoRoute(func(c *gin.Context) {
		atomic.AddInt32(hits, 1)
		h(c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hits
}

func useCredential(t *testing.T, user string, pass string) {
	credential.Set(user, pass)
	t.Cleanup(credential.Clear)
}

func multistatusBody(hrefs ...string) string {
	body := `<d:multistatus xmlns:d="DAV:">`
	for _, href := range hrefs {
		body += `<d:response><d:href>` + href + `</d:href></d:response>`
	}
	return body + `</d:multistatus>`
}

func TestExists(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, _ := newDavServer(t, func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)
		assert.Equal(t, "PROPFIND", c.Request.Method)
		assert.Equal(t, "1", c.GetHeader("Depth"))
		assert.Equal(t, "text/plain", c.GetHeader("Content-Type"))
		c.Data(207, "application/xml", []byte(multistatusBody("/dav/")))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	assert.True(t, ent.Exists(context.Background()))
}

func TestExistsEmptyMultistatus(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Data(207, "application/xml", []byte(multistatusBody()))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	assert.False(t, ent.Exists(context.Background()))
}

func TestListFilesFiltering(t *testing.T) {
	useCredential(t, "user", "pass")
	body := `<d:multistatus xmlns:d="DAV:">` +
		`<d:response><d:href>/dav/</d:href></d:response>` +
		`<d:response><d:href>/dav/a.txt</d:href><d:propstat><d:prop><d:getcontenttype>text/plain</d:getcontenttype><d:getcontentlength>5</d:getcontentlength></d:prop></d:propstat></d:response>` +
		`</d:multistatus>`
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Data(207, "application/xml", []byte(body))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	files := ent.ListFiles(context.Background())
	assert.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].DisplayName)
	assert.Equal(t, "text/plain", files[0].ContentType)
	assert.Equal(t, int64(5), files[0].Size)
	assert.Equal(t, srv.URL+"/dav/a.txt", files[0].NormalizedURL())
	assert.Equal(t, "/dav/a.txt", files[0].URLName())
}

func TestListFilesPartialFailure(t *testing.T) {
	useCredential(t, "user", "pass")
	body := `<d:multistatus xmlns:d="DAV:">` +
		`<d:response><d:href>/dav/bad%zzfile.bin</d:href></d:response>` +
		`<d:response><d:href>/dav/ok.txt</d:href></d:response>` +
		`</d:multistatus>`
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Data(207, "application/xml", []byte(body))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	files := ent.ListFiles(context.Background())
	assert.Len(t, files, 1)
	assert.Equal(t, "ok.txt", files[0].DisplayName)
}

func TestListFilesTransportFailure(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Status(500)
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	assert.Len(t, ent.ListFiles(context.Background()), 0)
}

func TestCredentialGating(t *testing.T) {
	credential.Clear()
	srv, hits := newDavServer(t, func(c *gin.Context) {
		c.Status(200)
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav")
	assert.NoError(t, err)
	ctx := context.Background()
	assert.False(t, ent.Exists(ctx))
	assert.Len(t, ent.ListFiles(ctx), 0)
	assert.False(t, ent.MakeAsDir(ctx))
	_, ok := ent.Download(ctx)
	assert.False(t, ok)
	assert.False(t, ent.UploadBytes(ctx, []byte("x"), ""))
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestMakeAsDirIdempotent(t *testing.T) {
	useCredential(t, "user", "pass")
	var exists atomic.Bool
	var mkcols int32
	srv, _ := newDavServer(t, func(c *gin.Context) {
		switch c.Request.Method {
		case "PROPFIND":
			if !exists.Load() {
				c.Status(404)
				return
			}
			c.Data(207, "application/xml", []byte(multistatusBody("/dav/newdir/")))
		case "MKCOL":
			atomic.AddInt32(&mkcols, 1)
			exists.Store(true)
			c.Status(201)
		default:
			c.Status(405)
		}
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/newdir")
	assert.NoError(t, err)
	ctx := context.Background()
	assert.True(t, ent.MakeAsDir(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mkcols))
	// second call sees the collection and skips MKCOL
	assert.True(t, ent.MakeAsDir(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mkcols))
}

func TestDownload(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, _ := newDavServer(t, func(c *gin.Context) {
		assert.Equal(t, "GET", c.Request.Method)
		c.Data(200, "application/octet-stream", []byte("payload"))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/a.bin")
	assert.NoError(t, err)
	raw, ok := ent.Download(context.Background())
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), raw)
}

func TestDownloadNotFound(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Status(404)
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/missing.bin")
	assert.NoError(t, err)
	_, ok := ent.Download(context.Background())
	assert.False(t, ok)
}

func TestDownloadToOverwriteGuard(t *testing.T) {
	useCredential(t, "user", "pass")
	srv, hits := newDavServer(t, func(c *gin.Context) {
		c.Data(200, "application/octet-stream", []byte("fresh"))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/a.bin")
	assert.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "a.bin")
	assert.NoError(t, os.WriteFile(dst, []byte("stale"), 0644))

	ctx := context.Background()
	assert.False(t, ent.DownloadTo(ctx, dst, false))
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))

	assert.True(t, ent.DownloadTo(ctx, dst, true))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	raw, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, "fresh", string(raw))
}

func TestUploadBytes(t *testing.T) {
	useCredential(t, "user", "pass")
	var gotBody []byte
	var gotType string
	srv, _ := newDavServer(t, func(c *gin.Context) {
		assert.Equal(t, "PUT", c.Request.Method)
		raw, err := io.ReadAll(c.Request.Body)
		assert.NoError(t, err)
		gotBody = raw
		gotType = c.GetHeader("Content-Type")
		c.Status(201)
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/up.bin")
	assert.NoError(t, err)
	assert.True(t, ent.UploadBytes(context.Background(), []byte("exact-bytes"), ""))
	assert.Equal(t, []byte("exact-bytes"), gotBody)
	assert.Equal(t, "application/octet-stream", gotType)
}

func TestUploadFile(t *testing.T) {
	useCredential(t, "user", "pass")
	var gotBody []byte
	var gotType string
	var gotLength int64
	srv, _ := newDavServer(t, func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		assert.NoError(t, err)
		gotBody = raw
		gotType = c.GetHeader("Content-Type")
		gotLength = c.Request.ContentLength
		c.Status(201)
	})
	src := filepath.Join(t.TempDir(), "src.txt")
	assert.NoError(t, os.WriteFile(src, []byte("file-content"), 0644))
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/src.txt")
	assert.NoError(t, err)
	assert.True(t, ent.Upload(context.Background(), src, "text/plain"))
	assert.Equal(t, []byte("file-content"), gotBody)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, int64(len("file-content")), gotLength)
}

func TestIndexFileInfo(t *testing.T) {
	useCredential(t, "user", "pass")
	body := `<d:multistatus xmlns:d="DAV:">` +
		`<d:response><d:href>/dav/a.txt</d:href><d:propstat><d:prop><d:getcontenttype>text/plain</d:getcontenttype><d:getcontentlength>42</d:getcontentlength></d:prop></d:propstat></d:response>` +
		`</d:multistatus>`
	srv, _ := newDavServer(t, func(c *gin.Context) {
		c.Data(207, "application/xml", []byte(body))
	})
	cli := New()
	ent, err := cli.NewEntry(srv.URL + "/dav/a.txt")
	assert.NoError(t, err)
	assert.True(t, ent.IndexFileInfo(context.Background()))
	assert.Equal(t, int64(42), ent.Size)
	assert.Equal(t, "text/plain", ent.ContentType)
}

func TestNewEntryMalformedURL(t *testing.T) {
	cli := New()
	_, err := cli.NewEntry("dav://[::bad/p")
	assert.Error(t, err)
	_, err = cli.NewEntry("no-host-at-all")
	assert.Error(t, err)
}

func TestUnusableEntrySkipsOperations(t *testing.T) {
	useCredential(t, "user", "pass")
	// normalization failed at construction, every operation short-circuits
	ent := &Entry{c: New(), RawURL: "dav://example.com/bad%zz"}
	ctx := context.Background()
	assert.False(t, ent.Exists(ctx))
	assert.Len(t, ent.ListFiles(ctx), 0)
	assert.False(t, ent.MakeAsDir(ctx))
	_, ok := ent.Download(ctx)
	assert.False(t, ok)
	assert.False(t, ent.UploadBytes(ctx, []byte("x"), ""))
	assert.False(t, ent.DownloadTo(ctx, filepath.Join(t.TempDir(), "x"), true))
}

func TestEntryHost(t *testing.T) {
	cli := New()
	ent, err := cli.NewEntry("davs://files.example.com:8443/dav/a.txt")
	assert.NoError(t, err)
	assert.Equal(t, "files.example.com:8443", ent.Host())
	assert.Equal(t, "https://files.example.com:8443/dav/a.txt", ent.NormalizedURL())
	assert.Equal(t, "davs://files.example.com:8443/dav/a.txt", ent.RawURL)
}
