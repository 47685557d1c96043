package protocol

// RawResponse is one response element extracted from a multistatus body.
type RawResponse struct {
	Href          string
	DisplayName   string
	ContentType   string
	ContentLength int64
}

// IsCollection reports whether the element describes a directory like
// resource. The trailing slash convention is significant in webdav hrefs.
func (r *RawResponse) IsCollection() bool {
	if len(r.Href) == 0 {
		return false
	}
	return r.Href[len(r.Href)-1] == '/'
}
