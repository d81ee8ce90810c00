package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/retraceio/retrace/internal/record"
)

// tsFormat is the stored timestamp layout. Timestamps are display metadata;
// nothing orders by them.
const tsFormat = time.RFC3339Nano

// marshalObject converts a payload or meta map to canonical JSON TEXT for
// storage, so replayed records serialize identically run after run.
// A nil map stores as empty TEXT and reads back as nil.
func marshalObject(m map[string]any) (string, error) {
	if m == nil {
		return "", nil
	}
	data, err := record.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return string(data), nil
}

// unmarshalObject parses stored JSON TEXT back into a map.
func unmarshalObject(data string) (map[string]any, error) {
	if data == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	return m, nil
}

func marshalTime(t time.Time) string {
	return t.UTC().Format(tsFormat)
}

func unmarshalTime(s string) (time.Time, error) {
	t, err := time.Parse(tsFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal timestamp %q: %w", s, err)
	}
	return t, nil
}
