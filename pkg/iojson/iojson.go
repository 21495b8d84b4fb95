// Package iojson reads and writes the JSON documents mtdock exchanges on the
// command line: --json output, JSON-lines listings and -f input files.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Error is written to the error stream when a value cannot be encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// encode renders obj without HTML escaping so article titles keep their
// ampersands and angle brackets readable.
func encode(obj any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWith writes obj as indented JSON to w. When obj cannot be encoded an
// Error document goes to ew and the encoding error is returned.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	data, err := encode(obj, true)
	if err != nil {
		if doc, encErr := encode(Error{
			Message: "error marshaling in iojson.Write",
			Data:    map[string]any{"json_error": err.Error()},
		}, false); encErr == nil {
			_, _ = ew.Write(doc)
		}
		return fmt.Errorf("encode json: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// WriteLine writes obj as a single line of JSON, for JSON-lines output.
func WriteLine(w io.Writer, obj any) error {
	data, err := encode(obj, false)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = w.Write(data)
	return err
}
