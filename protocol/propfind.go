package protocol

import (
	"fmt"
	"strings"
)

const (
	// DepthValue is fixed for every propfind this client issues, immediate
	// children only.
	DepthValue = "1"
	// PropfindContentType is text/plain on purpose. Enough servers reject
	// text/xml bodies here that the original client shipped text/plain, keep
	// the quirk.
	PropfindContentType = "text/plain"
)

const propfindBodyFmt = `<?xml version="1.0"?><a:propfind xmlns:a="DAV:"><a:prop><a:displayname/><a:resourcetype/><a:getcontentlength/><a:creationdate/><a:getlastmodified/>%s</a:prop></a:propfind>`

// PropfindBody builds the PROPFIND request payload. The baseline property
// set is always requested; every extra name is emitted as one more DAV:
// prop element. No extras leaves the substitution slot empty, which is still
// valid xml.
func PropfindBody(extra ...string) string {
	if len(extra) == 0 {
		return fmt.Sprintf(propfindBodyFmt, "")
	}
	var sb strings.Builder
	for _, name := range extra {
		sb.WriteString("<a:")
		sb.WriteString(name)
		sb.WriteString("/>")
	}
	return fmt.Sprintf(propfindBodyFmt, sb.String())
}
