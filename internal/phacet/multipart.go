package phacet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const boundaryMarker = "PhacetFormBoundary"

// EncodeMultipart builds a single-file multipart/form-data body. It
// returns the body and the boundary token; the caller sets
// "multipart/form-data; boundary=<boundary>" as the request Content-Type.
//
// The boundary is a random hex suffix on a fixed marker. A payload that
// literally contains the boundary line would misparse; that collision is
// an accepted limitation, not guarded against. The payload is written
// verbatim, whole-buffer, no streaming.
func EncodeMultipart(fieldName, filename, contentType string, payload []byte) ([]byte, string) {
	boundary := boundaryMarker + strings.ReplaceAll(uuid.New().String(), "-", "")

	var buf bytes.Buffer
	buf.Grow(len(payload) + 256)
	buf.WriteString("--" + boundary + "\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: form-data; name=%q; filename=%q\r\n", fieldName, filename)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", contentType)
	buf.Write(payload)
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	return buf.Bytes(), boundary
}
