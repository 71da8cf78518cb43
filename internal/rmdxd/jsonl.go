package rmdxd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ReadOneLine returns the next non-blank line of the stream, without its
// newline. A final line lacking the trailing newline is still returned; a
// clean end of stream yields io.EOF.
func ReadOneLine(r *bufio.Reader) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}

	for {
		raw, err := r.ReadBytes('\n')
		line := bytes.TrimSpace(raw)
		if len(line) > 0 && (err == nil || err == io.EOF) {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
		// Blank line between frames; skip it.
	}
}

// WriteOneLine marshals v onto a single newline-terminated line. The caller
// flushes.
func WriteOneLine(w io.Writer, v any) error {
	if w == nil {
		return fmt.Errorf("writer is nil")
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}
