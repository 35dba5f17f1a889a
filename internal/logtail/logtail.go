package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/sirupsen/logrus"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     logrus.Level
	Component string
	Op        string
	Message   string
	Err       string
	Raw       string
}

// Parse reads a line written by logrus in either the text or the JSON
// formatter. Lines in neither shape come back as an info entry holding the
// raw text.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	fields := map[string]string{}
	if strings.HasPrefix(trimmed, "{") {
		var doc map[string]any
		if json.Unmarshal([]byte(trimmed), &doc) == nil {
			for k, v := range doc {
				fields[k] = fmt.Sprint(v)
			}
		}
	} else {
		fields = parseLogfmt(trimmed)
	}

	entry := Entry{Level: logrus.InfoLevel, Raw: line}
	msg, ok := fields["msg"]
	if !ok {
		entry.Message = trimmed
		return entry
	}
	entry.Message = msg
	if lvl, err := logrus.ParseLevel(fields["level"]); err == nil {
		entry.Level = lvl
	}
	if ts, err := time.Parse(time.RFC3339, fields["time"]); err == nil {
		entry.Time = ts
	}
	entry.Component = fields["component"]
	entry.Op = fields["op"]
	entry.Err = fields["error"]
	return entry
}

// Tail reads the last maxLines of path and keeps entries at or above threshold.
func Tail(path string, maxLines int, threshold logrus.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := Parse(line)
		// logrus levels grow more verbose as the value increases.
		if e.Level > threshold {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parseLogfmt reads the key=value pairs of a logrus text line. A line that
// is not valid logfmt yields no fields.
func parseLogfmt(line string) map[string]string {
	fields := map[string]string{}
	d := logfmt.NewDecoder(strings.NewReader(line))
	for d.ScanRecord() {
		for d.ScanKeyval() {
			fields[string(d.Key())] = string(d.Value())
		}
	}
	if d.Err() != nil {
		return map[string]string{}
	}
	return fields
}
