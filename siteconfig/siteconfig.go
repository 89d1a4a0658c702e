package siteconfig

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/jrsteele09/wedding-site/internal/errors"
)

// Document is the site content edited in the admin console. The backend does
// not interpret it beyond requiring a JSON object.
type Document = json.RawMessage

type Repo interface {
	// Get returns errors.ErrNotFound until the first Put.
	Get(ctx context.Context) (Document, error)
	Put(ctx context.Context, doc Document) error
}

// Normalize checks raw is a JSON object and returns it compacted.
func Normalize(raw json.RawMessage) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "config must be a JSON object")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "config must be a JSON object: %v", err)
	}

	var out bytes.Buffer
	if err := json.Compact(&out, trimmed); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "compact config: %v", err)
	}
	return out.Bytes(), nil
}
