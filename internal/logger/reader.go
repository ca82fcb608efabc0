package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Record is one parsed log entry.
type Record struct {
	Timestamp time.Time
	Seq       uint64
	Tag       string
	Fields    map[string]any
}

// Read returns every record logged for contextID, in the order they were
// appended. A missing log file yields an empty, non-error result: a
// context that never logged anything is not a failure.
func Read(dir, contextID string) ([]Record, error) {
	path := filepath.Join(dir, contextID+".log")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	for rec, err := range scanRecords(f) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// scanRecords yields records from r one at a time, stopping at the first
// parse error. It understands the heredoc framing Log writes: a field
// opened with "name: <<<DELIM" continues, verbatim, until a line exactly
// equal to DELIM.
func scanRecords(r *os.File) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

		cur := Record{Fields: map[string]any{}}
		have := false

		emit := func() bool {
			if !have {
				return true
			}
			ok := yield(cur, nil)
			cur = Record{Fields: map[string]any{}}
			have = false
			return ok
		}

		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				if !emit() {
					return
				}
				continue
			}
			have = true

			name, value, multi, delim, ok := splitFieldLine(line)
			if !ok {
				if !yield(Record{}, fmt.Errorf("malformed log line %q", line)) {
					return
				}
				continue
			}
			if multi {
				var payload strings.Builder
				for sc.Scan() {
					l := sc.Text()
					if l == delim {
						break
					}
					payload.WriteString(l)
					payload.WriteString("\n")
				}
				value = strings.TrimSuffix(payload.String(), "\n")
			}

			if err := assignField(&cur, name, value); err != nil {
				if !yield(Record{}, err) {
					return
				}
			}
		}
		if err := sc.Err(); err != nil {
			yield(Record{}, fmt.Errorf("scanning log: %w", err))
			return
		}
		emit()
	}
}

// splitFieldLine splits "name: value" or "name: <<<DELIM" into its parts.
func splitFieldLine(line string) (name, value string, multi bool, delim string, ok bool) {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return "", "", false, "", false
	}
	name = line[:idx]
	rest := line[idx+2:]
	if strings.HasPrefix(rest, "<<<") {
		return name, "", true, rest[len("<<<"):], true
	}
	return name, rest, false, "", true
}

func assignField(rec *Record, name, value string) error {
	switch name {
	case "timestamp":
		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", value, err)
		}
		rec.Timestamp = t
	case "seq":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing seq %q: %w", value, err)
		}
		rec.Seq = n
	case "tag":
		rec.Tag = value
	default:
		if strings.HasSuffix(name, jsonKeyFlag) {
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return fmt.Errorf("decoding JSON field %q: %w", name, err)
			}
			rec.Fields[strings.TrimSuffix(name, jsonKeyFlag)] = decoded
		} else {
			rec.Fields[name] = value
		}
	}
	return nil
}
