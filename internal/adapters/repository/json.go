package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// JSONSource serves snapshots from a JSON document holding either one
// snapshot or an array of snapshots, as written by the test-events generator.
type JSONSource struct {
	snapshots map[string]model.Snapshot
}

// OpenJSON reads and decodes path.
func OpenJSON(ctx context.Context, path string) (*JSONSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	return NewJSONSource(data)
}

// NewJSONSource decodes data. Later snapshots of the same colony win.
func NewJSONSource(data []byte) (*JSONSource, error) {
	var snaps []model.Snapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &snaps); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
		}
	} else {
		var one model.Snapshot
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
		}
		snaps = append(snaps, one)
	}

	s := &JSONSource{snapshots: make(map[string]model.Snapshot, len(snaps))}
	for i := range snaps {
		s.snapshots[snaps[i].Colony] = snaps[i]
	}
	return s, nil
}

// Colonies lists the colonies in the document.
func (s *JSONSource) Colonies(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Load returns the colony's snapshot restricted to w.
func (s *JSONSource) Load(ctx context.Context, colony string, w Window) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	snap, ok := s.snapshots[colony]
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, colony)
	}
	return filter(snap, w), nil
}

// Close is a no-op.
func (s *JSONSource) Close() error { return nil }
