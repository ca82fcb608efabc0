// Package protocol implements the structured command stream exchanged with
// the model: parsing the model's mixed prose/command output and formatting
// tool results back into the same wire shape.
//
// The key/value-until-blank-line shape used here (name: value, record ends
// at a blank line) is shared with the prompt descriptor header
// (internal/config) and the append-only context log (internal/logger).
// ScanKVBlock in this file is used by the descriptor parser; Parse uses
// splitKV directly, and the logger's reader has its own line splitter.
package protocol

import (
	"bufio"
	"strings"
)

// KVLine is one parsed "name: value" line.
type KVLine struct {
	Name  string
	Value string
}

// ScanKVBlock reads "name: value" lines from sc until a blank line or EOF,
// returning the parsed lines and whether a blank-line terminator was
// consumed (false on EOF without a trailing blank line).
func ScanKVBlock(sc *bufio.Scanner) ([]KVLine, bool) {
	var lines []KVLine
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			return lines, true
		}
		name, value, ok := splitKV(line)
		if !ok {
			// Malformed argument line within a block: skipped per spec.
			continue
		}
		lines = append(lines, KVLine{Name: name, Value: value})
	}
	return lines, false
}

func splitKV(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:idx])
	if name == "" {
		return "", "", false
	}
	value = line[idx+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return name, value, true
}
