package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL
// lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all event log entries from a JSONL file. A missing
// file returns a nil log without error; an existing but empty file
// returns an empty non-nil log, so callers can tell the two apart.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	return entries, nil
}

// WriteAll writes an event log to a JSONL file, replacing existing content.
func WriteAll(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating event log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding entry: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing event log: %w", err)
	}
	return nil
}
