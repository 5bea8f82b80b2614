// iojson are utilities for reading and writing JSON IO from a
// command line interface perspective
package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Write writes obj as indented JSON followed by a newline.
func Write(w io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	bits = append(bits, '\n')
	_, err = w.Write(bits)
	return err
}

// WriteLine writes obj as a single compact JSON line, the format used for
// streaming output that other commands can read back line by line.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}
	bits = append(bits, '\n')
	_, err = w.Write(bits)
	return err
}

// ReadLines decodes a stream of JSON values, one per line or concatenated,
// calling fn for each until EOF.
func ReadLines[T any](r io.Reader, fn func(T) error) error {
	dec := json.NewDecoder(r)
	for {
		var v T
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode JSON: %w", err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}
