package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HTTPEntry captures enough metadata to support conditional revalidation.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// HTTPCache stores page bodies on disk as <key>.meta.json and <key>.body
// where key is sha256(url).
type HTTPCache struct {
	Dir         string
	StrictPerms bool
}

func (c *HTTPCache) store() store { return store{Dir: c.Dir, StrictPerms: c.StrictPerms} }

func metaName(key string) string { return key + ".meta.json" }
func bodyName(key string) string { return key + ".body" }

// LoadMeta returns entry metadata if present.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	s := c.store()
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(metaName(digest(url))))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the cached body if present.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	s := c.store()
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path(bodyName(digest(url))))
}

// Save stores the body first and the metadata second, so a meta file always
// points at a complete body.
func (c *HTTPCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	s := c.store()
	if err := s.ensureDir(); err != nil {
		return err
	}
	key := digest(url)
	if err := s.writeAtomic(bodyName(key), body); err != nil {
		return err
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return s.writeAtomic(metaName(key), meta)
}
