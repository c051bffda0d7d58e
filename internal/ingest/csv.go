package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/calheat/schema"
)

// Column suffixes that force a field type, as in "created:time".
const (
	timeSuffix   = ":time"
	stringSuffix = ":string"
)

// readCSVFile reads a CSV file with a header row into one series.
func readCSVFile(path, name string) (schema.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Series{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	s, err := DecodeCSV(f, name)
	if err != nil {
		return schema.Series{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return s, nil
}

// DecodeCSV reads a header row followed by data rows. A column is a time field
// when its header is "time" or "timestamp" or ends in ":time", a string field
// when it ends in ":string", and a number field otherwise. Empty and NaN cells
// become nil.
func DecodeCSV(r io.Reader, name string) (schema.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return schema.Series{}, fmt.Errorf("missing header row")
	}
	if err != nil {
		return schema.Series{}, err
	}

	fields := make([]schema.Field, len(header))
	for i, h := range header {
		fields[i] = headerField(h)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return schema.Series{}, err
		}
		for i := range fields {
			cell := ""
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			fields[i].Values = append(fields[i].Values, parseCell(fields[i].Type, cell))
		}
	}

	return schema.Series{Name: name, Fields: fields}, nil
}

// headerField derives a field name and type from a header cell.
func headerField(h string) schema.Field {
	h = strings.TrimSpace(h)
	lower := strings.ToLower(h)
	switch {
	case strings.HasSuffix(lower, timeSuffix):
		return schema.Field{Name: h[:len(h)-len(timeSuffix)], Type: schema.TimeField}
	case strings.HasSuffix(lower, stringSuffix):
		return schema.Field{Name: h[:len(h)-len(stringSuffix)], Type: schema.StringField}
	case lower == "time" || lower == "timestamp":
		return schema.Field{Name: h, Type: schema.TimeField}
	default:
		return schema.Field{Name: h, Type: schema.NumberField}
	}
}

// parseCell converts a raw cell according to the field type.
func parseCell(ft schema.FieldType, cell string) any {
	if cell == "" {
		return nil
	}
	switch ft {
	case schema.TimeField:
		if t, ok := parseTimeCell(cell); ok {
			return t
		}
		return nil
	case schema.NumberField:
		if strings.EqualFold(cell, "nan") || strings.EqualFold(cell, "null") {
			return nil
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil
		}
		return v
	default:
		return cell
	}
}

// parseTimeCell accepts epoch milliseconds, RFC3339 or a plain UTC date.
func parseTimeCell(cell string) (any, bool) {
	if ms, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return ms, true
	}
	if t, err := time.Parse(time.RFC3339Nano, cell); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, cell); err == nil {
		return t, true
	}
	return nil, false
}

// normalizeFieldType maps free-form type names onto the known field types.
func normalizeFieldType(s string) schema.FieldType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time":
		return schema.TimeField
	case "number":
		return schema.NumberField
	case "string":
		return schema.StringField
	case "boolean":
		return schema.BooleanField
	default:
		return schema.OtherField
	}
}
