package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/calheat/schema"
)

// readJSONFile reads a single frame or an array of frames.
func readJSONFile(path string) ([]schema.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	series, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return series, nil
}

// DecodeJSON decodes one frame or an array of frames. Numbers keep their
// textual form as json.Number so large epoch values are not truncated.
func DecodeJSON(r io.Reader) ([]schema.Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		var frames []schema.Series
		if err := dec.Decode(&frames); err != nil {
			return nil, err
		}
		return normalizeFrames(frames), nil
	}
	var frame schema.Series
	if err := dec.Decode(&frame); err != nil {
		return nil, err
	}
	return normalizeFrames([]schema.Series{frame}), nil
}

// normalizeFrames lowercases field types and converts RFC3339 strings in time
// fields to time.Time. Unreadable cells are left for the aggregator to skip.
func normalizeFrames(frames []schema.Series) []schema.Series {
	for i := range frames {
		for j := range frames[i].Fields {
			f := &frames[i].Fields[j]
			f.Type = normalizeFieldType(string(f.Type))
			if f.Type != schema.TimeField {
				continue
			}
			for k, v := range f.Values {
				if s, ok := v.(string); ok {
					if t, ok := parseTimeCell(s); ok {
						f.Values[k] = t
					}
				}
			}
		}
	}
	return frames
}
