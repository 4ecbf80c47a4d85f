// Package cache answers conditional GET requests of the generated read
// routes with 304 Not Modified.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateETag returns a weak ETag for content. Responses are compared
// after JSON encoding, so byte equality is not promised.
func GenerateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf(`W/"%s"`, hex.EncodeToString(hash[:16]))
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		tag := strings.TrimPrefix(part, "W/")
		if len(tag) >= 2 && tag[0] == '"' && tag[len(tag)-1] == '"' {
			etags = append(etags, part)
		}
	}
	return etags
}

// MatchesETag reports whether etag matches one of etags by weak comparison
func MatchesETag(etag string, etags []string) bool {
	opaque := strings.TrimPrefix(etag, "W/")
	for _, e := range etags {
		if e == "*" || strings.TrimPrefix(e, "W/") == opaque {
			return true
		}
	}
	return false
}
