package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
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

// Entry is one parsed zerolog line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Domain    string
	Message   string
	Err       string
	Raw       string
}

// Parse decodes a zerolog JSON line. Lines that are not JSON come back with
// only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	var fields struct {
		Time      string `json:"time"`
		Level     string `json:"level"`
		Component string `json:"component"`
		Domain    string `json:"domain"`
		Message   string `json:"message"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	if t, err := time.Parse(time.RFC3339Nano, fields.Time); err == nil {
		entry.Time = t
	}
	entry.Level = fields.Level
	entry.Component = fields.Component
	entry.Domain = fields.Domain
	entry.Message = fields.Message
	entry.Err = fields.Error
	return entry
}

// ReadEntries is Read followed by Parse on every line.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Source names where the entry came from, e.g. "session/invitation".
func (e Entry) Source() string {
	switch {
	case e.Component != "" && e.Domain != "":
		return e.Component + "/" + e.Domain
	case e.Component != "":
		return e.Component
	default:
		return e.Domain
	}
}

// String renders the entry on one line for the log view.
func (e Entry) String() string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(levelTag(e.Level))
	if src := e.Source(); src != "" {
		b.WriteString(" [" + src + "]")
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	if e.Err != "" {
		b.WriteString(": " + e.Err)
	}
	return b.String()
}

func levelTag(level string) string {
	switch level {
	case "debug":
		return "DBG"
	case "info":
		return "INF"
	case "warn":
		return "WRN"
	case "error":
		return "ERR"
	case "fatal", "panic":
		return "FTL"
	case "":
		return "---"
	default:
		return strings.ToUpper(level)
	}
}
