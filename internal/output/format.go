package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the record encoding.
type Format string

const (
	JSON   Format = "json"   // one compact JSON document per line
	Pretty Format = "pretty" // indented JSON
	YAML   Format = "yaml"   // YAML documents separated by ---
)

// ParseFormat converts a string ("json", "pretty", "yaml") to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, Pretty, YAML:
		return f, nil
	case "":
		return JSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Encoder writes records to w in a fixed format. Not safe for concurrent use.
type Encoder struct {
	w      io.Writer
	format Format
	json   *json.Encoder
	n      int
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, format Format) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if format == Pretty {
		enc.SetIndent("", "  ")
	}
	return &Encoder{w: w, format: format, json: enc}
}

// Encode writes one record.
func (e *Encoder) Encode(v any) error {
	defer func() { e.n++ }()
	if e.format != YAML {
		return e.json.Encode(v)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if e.n > 0 {
		if _, err := io.WriteString(e.w, "---\n"); err != nil {
			return err
		}
	}
	_, err = e.w.Write(data)
	return err
}
