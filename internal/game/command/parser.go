package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for names with spaces).
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Precondition: line should be trimmed of leading/trailing whitespace.
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := line[spaceIdx+1:]
	rest = strings.TrimSpace(rest)

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// Int parses argument i as a non-negative integer.
func (p ParseResult) Int(i int) (int, error) {
	if i >= len(p.Args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	n, err := strconv.Atoi(p.Args[i])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a non-negative number", p.Args[i])
	}
	return n, nil
}

// Assignments parses "key=value" arguments from index from onward into a map
// of non-negative integers. Keys are lowercased.
func (p ParseResult) Assignments(from int) (map[string]int, error) {
	out := map[string]int{}
	for _, arg := range p.Args[min(from, len(p.Args)):] {
		key, val, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not key=value", arg)
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q: value must be a non-negative number", arg)
		}
		out[strings.ToLower(key)] += n
	}
	return out, nil
}
