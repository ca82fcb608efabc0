package protocol

import (
	"strconv"
	"strings"
)

// Parse splits text into an ordered sequence of Commands and the remaining
// prose. Malformed command headers (missing id, non-integer id) are
// demoted back into prose; malformed argument lines within a command are
// skipped (lines splitKV cannot split).
func Parse(text string) ParseResult {
	lines := splitLines(text)
	var (
		commands []Command
		prose    strings.Builder
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		id, verb, rest, isHeader := parseHeader(line)
		if !isHeader {
			prose.WriteString(line)
			prose.WriteString("\n")
			i++
			continue
		}
		_ = rest
		args := make(map[string]string)
		j := i + 1
		for j < len(lines) {
			l := lines[j]
			if strings.TrimSpace(l) == "" {
				j++
				break
			}
			if _, _, _, ok := parseHeader(l); ok {
				// Next command header terminates this one's argument block.
				break
			}
			name, value, ok := splitKV(l)
			if !ok {
				j++
				continue
			}
			if value == MultilineOpen {
				payload, consumed := readMultiline(lines, j+1)
				args[name] = payload
				j += consumed + 1
				continue
			}
			args[name] = value
			j++
		}
		commands = append(commands, Command{ID: id, Verb: verb, Args: args})
		i = j
	}

	return ParseResult{Commands: commands, Prose: strings.TrimSuffix(prose.String(), "\n")}
}

// parseHeader checks whether line is a well-formed "<Sentinel> <id> <VERB>"
// command header. A missing id, non-integer id, or missing verb disqualifies
// the line (it is demoted to prose by the caller).
func parseHeader(line string) (id int, verb string, rest string, ok bool) {
	if !strings.HasPrefix(line, Sentinel+" ") {
		return 0, "", "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, "", "", false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", "", false
	}
	return n, fields[2], strings.Join(fields[3:], " "), true
}

// readMultiline reads payload lines starting at lines[start] until a line
// exactly equal to MultilineClose (after un-escaping), returning the
// payload (newline-joined) and the number of lines consumed (including the
// closer). If no closer is found before EOF, everything to the end is
// treated as payload and 0 extra lines are reported consumed beyond that.
func readMultiline(lines []string, start int) (payload string, consumed int) {
	var sb strings.Builder
	i := start
	for i < len(lines) {
		l := lines[i]
		if l == MultilineClose {
			i++
			break
		}
		if i > start {
			sb.WriteString("\n")
		}
		sb.WriteString(unescapePayloadLine(l))
		i++
	}
	return sb.String(), i - start
}

// unescapePayloadLine strips exactly one leading EscapeChar from a payload
// line whose escape-stripped remainder is exactly MultilineClose, restoring
// the literal line a writer had to escape (see escapePayloadLine in
// format.go). Lines that merely start with MultilineClose as a prefix of
// longer content are never ambiguous with the block terminator (which is
// matched by exact equality) and are left untouched.
func unescapePayloadLine(l string) string {
	remainder, stripped := stripEscapes(l)
	if remainder == MultilineClose && stripped > 0 {
		return l[len(EscapeChar):]
	}
	return l
}

// stripEscapes removes leading EscapeChar runs, reporting the remainder and
// how many were stripped.
func stripEscapes(l string) (remainder string, stripped int) {
	s := l
	for strings.HasPrefix(s, EscapeChar) {
		s = s[len(EscapeChar):]
		stripped++
	}
	return s, stripped
}

// splitLines splits on "\n" without dropping a trailing empty element's
// significance the way strings.Split already doesn't — kept as a named
// helper for readability at call sites.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
