// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonfile reads and writes the pipeline's intermediate artifacts:
// pretty-printed JSON documents replaced atomically, and append-only JSONL
// streams.
package jsonfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// maxLine bounds a single JSONL record. Parsed papers can run to several
// megabytes of text.
const maxLine = 64 << 20

// Write marshals v with two-space indentation and replaces path atomically.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "jsonfile: marshal %s", path)
	}
	data = append(data, '\n')
	return WriteBytes(path, data)
}

// WriteBytes writes data to a temp file beside path, then renames it.
func WriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "jsonfile: mkdir for %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "jsonfile: temp for %s", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "jsonfile: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "jsonfile: close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "jsonfile: rename %s", path)
	}
	return nil
}

// Read unmarshals path into v. It reports false without error when the file
// does not exist.
func Read(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "jsonfile: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrapf(err, "jsonfile: decode %s", path)
	}
	return true, nil
}

// Append writes each record as one JSON line at the end of path.
func Append[T any](path string, records ...T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "jsonfile: mkdir for %s", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "jsonfile: open %s", path)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close() //nolint:errcheck
			return eris.Wrapf(err, "jsonfile: encode to %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "jsonfile: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "jsonfile: close %s", path)
}

// ReadLines decodes every non-blank line of a JSONL file. A missing file
// yields no records. Lines that fail to decode are skipped and counted.
func ReadLines[T any](path string) ([]T, int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, eris.Wrapf(err, "jsonfile: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var (
		out     []T
		skipped int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), maxLine)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, skipped, eris.Wrapf(err, "jsonfile: scan %s", path)
	}
	return out, skipped, nil
}
