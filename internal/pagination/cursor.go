// Package pagination implements opaque keyset cursors for list endpoints.
// A cursor pins the (timestamp, id) tuple of the last item on a page so the
// next page can resume after it without offset scans.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor is the decoded position of the last item on the previous page.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// EncodeCursor packs the tuple into an opaque URL-safe token. An empty id
// yields an empty token, meaning there is no next page.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := timestamp.UTC().Format(time.RFC3339Nano) + "|" + lastID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token
// decodes to a nil cursor (first page).
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	ts, id, found := strings.Cut(string(raw), "|")
	if !found || id == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: timestamp}, nil
}
