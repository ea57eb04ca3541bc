// Package progress implements the progress storage backends. Every backend
// stores the whole collection as one JSON document under a single key.
package progress

import (
	"encoding/json"
	"fmt"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
)

// Encode serializes the collection. A nil collection encodes as [].
func Encode(c progress.Collection) ([]byte, error) {
	if c == nil {
		c = progress.Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress: %w", err)
	}
	return data, nil
}

// Decode parses a stored document.
func Decode(data []byte) (progress.Collection, error) {
	var c progress.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}
	if c == nil {
		c = progress.Collection{}
	}
	return c, nil
}
