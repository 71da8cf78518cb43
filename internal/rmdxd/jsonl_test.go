package rmdxd

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestReadOneLineSkipsBlanksAndTrailingEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\n  \n{\"a\":1}\n\n{\"b\":2}"))

	line, err := ReadOneLine(r)
	if err != nil || string(line) != `{"a":1}` {
		t.Fatalf("line=%q err=%v", line, err)
	}

	// Last frame has no trailing newline.
	line, err = ReadOneLine(r)
	if err != nil || string(line) != `{"b":2}` {
		t.Fatalf("line=%q err=%v", line, err)
	}

	if _, err := ReadOneLine(r); err != io.EOF {
		t.Fatalf("err=%v, want io.EOF", err)
	}
}

func TestWriteOneLine(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOneLine(&buf, map[string]int{"n": 7}); err != nil {
		t.Fatalf("WriteOneLine: %v", err)
	}
	if got := buf.String(); got != "{\"n\":7}\n" {
		t.Fatalf("got=%q", got)
	}

	if err := WriteOneLine(&buf, func() {}); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestJSONLNilArgs(t *testing.T) {
	if _, err := ReadOneLine(nil); err == nil {
		t.Fatal("expected error for nil reader")
	}
	if err := WriteOneLine(nil, 1); err == nil {
		t.Fatal("expected error for nil writer")
	}
}
