package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects how Formatter.Format renders bulky fields.
type Mode string

const (
	// ModeNormal renders every field verbatim.
	ModeNormal Mode = "normal"
	// ModeLongTerm replaces fields named in Formatter.Bulky with Omitted,
	// for carrying tool-results into a long-term memory snapshot.
	ModeLongTerm Mode = "long_term"
)

// Formatter renders Tool-results back into the wire format the model reads.
type Formatter struct {
	// Bulky names fields (file contents, search matches, command output)
	// replaced by Omitted when formatting in ModeLongTerm.
	Bulky map[string]bool
}

// Format renders results as a sequence of command-shaped blocks:
//
//	@@LOOM <id> RESULT
//	status: <success|error>
//	<field>: <value>
//
// Multi-line field values are framed with MultilineOpen/MultilineClose;
// any payload line that would collide with MultilineClose is escaped.
func (f Formatter) Format(results []Result, mode Mode) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s %d %s\n", Sentinel, r.ID, VerbResult)
		sb.WriteString("status: " + r.Status + "\n")

		names := make([]string, 0, len(r.Fields))
		for name := range r.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			value := r.Fields[name]
			if mode == ModeLongTerm && f.Bulky[name] {
				value = Omitted
			}
			writeField(&sb, name, value)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeField(sb *strings.Builder, name, value string) {
	if !strings.Contains(value, "\n") && value != MultilineOpen {
		sb.WriteString(name + ": " + value + "\n")
		return
	}
	sb.WriteString(name + ": " + MultilineOpen + "\n")
	for _, line := range strings.Split(value, "\n") {
		sb.WriteString(escapePayloadLine(line))
		sb.WriteString("\n")
	}
	sb.WriteString(MultilineClose + "\n")
}

// escapePayloadLine prefixes EscapeChar to a payload line whose
// escape-stripped remainder is exactly MultilineClose — i.e. a line that
// would otherwise be read back as (or unescape into) the block closer —
// preserving round-tripping (§9 escape symmetry, §8 boundary: a payload
// line matching the closer pattern at start of a line round-trips
// unchanged). Lines where MultilineClose is merely a prefix of longer
// content never collide with the closer, which is matched by exact
// equality, and are left untouched.
func escapePayloadLine(l string) string {
	if remainder, _ := stripEscapes(l); remainder == MultilineClose {
		return EscapeChar + l
	}
	return l
}
