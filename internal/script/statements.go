package script

import (
	"bufio"
	"io"
	"strings"
)

// statement is one expression of a build description with the line it starts on.
type statement struct {
	line int
	text string
}

// depthDelta returns how much a line changes the bracket nesting, ignoring brackets inside
// string literals. quote carries an unterminated raw string across lines.
func depthDelta(line string, quote *rune) int {
	delta := 0
	escaped := false
	for i, r := range line {
		if *quote == 0 && strings.HasPrefix(line[i:], "//") {
			break
		}
		if *quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\' && *quote != '`':
				escaped = true
			case r == *quote:
				*quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			*quote = r
		case '(', '[', '{':
			delta++
		case ')', ']', '}':
			delta--
		}
	}
	// only raw strings may span lines
	if *quote != '`' {
		*quote = 0
	}
	return delta
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#")
}

// splitStatements cuts a description into statements. A statement ends at a newline unless
// brackets are still open; blank and comment lines between statements are skipped.
func splitStatements(r io.Reader) ([]statement, error) {
	var (
		out   []statement
		cur   strings.Builder
		start int
		depth int
		quote rune
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if cur.Len() == 0 {
			if trimmed == "" || isComment(trimmed) {
				continue
			}
			start = lineNo
		} else {
			if isComment(trimmed) && quote == 0 {
				continue
			}
			cur.WriteByte('\n')
		}

		cur.WriteString(line)
		depth += depthDelta(line, &quote)
		if depth <= 0 && quote == 0 {
			out = append(out, statement{line: start, text: strings.TrimSpace(cur.String())})
			cur.Reset()
			depth = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cur.Len() > 0 {
		// let the compiler report the unbalanced statement
		out = append(out, statement{line: start, text: strings.TrimSpace(cur.String())})
	}
	return out, nil
}
