package feedparse

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Identity is how an item is recognized across refreshes. Exactly one of
// GUID or Fingerprint is set: the native id wins, the fingerprint exists
// only for items without one.
type Identity struct {
	GUID        string
	Fingerprint string
}

// ItemIdentity computes the stable identity of a parsed item. The second
// return is false when the item carries neither a native id nor any content
// field worth fingerprinting; such items cannot be deduplicated and are
// skipped by the ingest path.
func ItemIdentity(item ParsedItem) (Identity, bool) {
	if item.GUID != "" {
		return Identity{GUID: item.GUID}, true
	}
	if item.Link == "" && item.Title == "" && item.Content == "" {
		return Identity{}, false
	}
	return Identity{Fingerprint: fingerprint(item)}, true
}

// fingerprint hashes a fixed, ordered tuple of content fields so that
// re-parsing the same remote item on a later refresh yields the same
// identity. The field order is part of the stored format; do not reorder.
func fingerprint(item ParsedItem) string {
	published := ""
	if item.PublishedAt != nil {
		published = item.PublishedAt.UTC().Format(time.RFC3339)
	}
	fields := []string{item.Link, item.Title, item.Content, item.Author, published}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x00")))
	return hex.EncodeToString(sum[:])
}
