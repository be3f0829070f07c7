package pwa

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strings"
)

// GeneratedMarker tags files written by setup --publish-assets. Servers
// render such files fresh instead of treating them as custom overrides.
const GeneratedMarker = "adminpwa:generated"

// MarkGenerated prepends a marker comment in the syntax of the file type.
// Unknown types are returned unchanged.
func MarkGenerated(name string, data []byte) []byte {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js":
		return append([]byte("// "+GeneratedMarker+"\n"), data...)
	case ".xml":
		comment := []byte("<!-- " + GeneratedMarker + " -->\n")
		if rest, ok := bytes.CutPrefix(data, []byte(xml.Header)); ok {
			return append(append([]byte(xml.Header), comment...), rest...)
		}
		return append(comment, data...)
	}
	return data
}

// IsGenerated reports whether data starts with a generated marker
func IsGenerated(data []byte) bool {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	return bytes.Contains(head, []byte(GeneratedMarker))
}
