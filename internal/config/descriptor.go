package config

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/loomctl/loom/internal/protocol"
)

// Descriptor is a Context's prompt descriptor (§4.F, §9): a tiny
// key/value header terminated by a blank line, followed by the system
// directive (the rest of the file).
type Descriptor struct {
	DefaultModel string
	Tools        []string
	SystemPrompt string
}

// knownDescriptorKeys are the only header keys a descriptor may set.
// Unknown keys are an error so drift in descriptor files is caught at
// load, per §9 "Prompt descriptor header parsing".
var knownDescriptorKeys = map[string]bool{
	"default_model": true,
	"tools":         true,
}

// ParseDescriptor parses a prompt descriptor file's contents into a
// Descriptor. The header (default_model, tools) is parsed with the
// key/value-until-blank-line scanner internal/protocol.ScanKVBlock, the
// same "name: value" line shape the Command Protocol and the Logger write;
// everything after the header's
// terminating blank line is the system directive, verbatim.
func ParseDescriptor(data []byte) (Descriptor, error) {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lines, terminated := protocol.ScanKVBlock(sc)

	var d Descriptor
	for _, kv := range lines {
		if !knownDescriptorKeys[kv.Name] {
			return Descriptor{}, fmt.Errorf("unknown prompt descriptor key %q", kv.Name)
		}
		switch kv.Name {
		case "default_model":
			d.DefaultModel = kv.Value
		case "tools":
			d.Tools = splitAndTrim(kv.Value, ",")
		}
	}
	if d.DefaultModel == "" {
		return Descriptor{}, fmt.Errorf("prompt descriptor missing required key %q", "default_model")
	}

	if terminated {
		// The remainder (everything after the scanner's current position)
		// is the system directive. bufio.Scanner has already consumed the
		// blank line; read the rest of the underlying data by re-scanning
		// for clarity and to avoid holding onto the scanner's internal
		// buffer across calls.
		d.SystemPrompt = remainderAfterHeader(string(data))
	}
	return d, nil
}

// remainderAfterHeader returns everything in data after the first blank
// line, trimmed of a single leading newline left by the split.
func remainderAfterHeader(data string) string {
	idx := strings.Index(data, "\n\n")
	if idx < 0 {
		return ""
	}
	return data[idx+2:]
}

func splitAndTrim(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
