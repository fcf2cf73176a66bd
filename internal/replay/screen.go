package replay

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Render turns raw engine output into the text a terminal would show. It
// understands the subset the line editor emits: CR, LF, backspace, cursor
// forward and backward, and erase to end of line. Other escape sequences
// are dropped. Trailing spaces and trailing empty lines are removed.
func Render(output string) string {
	var lines []string
	var line []byte
	col := 0

	put := func(b byte) {
		for len(line) < col {
			line = append(line, ' ')
		}
		if col < len(line) {
			line[col] = b
		} else {
			line = append(line, b)
		}
		col++
	}

	for i := 0; i < len(output); i++ {
		b := output[i]
		switch {
		case b == '\n':
			lines = append(lines, string(line))
			line, col = nil, 0
		case b == '\r':
			col = 0
		case b == '\b':
			col = max(col-1, 0)
		case b == 0x1b && i+1 < len(output) && output[i+1] == '[':
			end := i + 2
			for end < len(output) && output[end] >= 0x20 && output[end] <= 0x3f {
				end++
			}
			if end >= len(output) {
				i = len(output)
				continue
			}
			n := 1
			if params := output[i+2 : end]; params != "" {
				if v, err := strconv.Atoi(params); err == nil {
					n = v
				}
			}
			switch output[end] {
			case 'C':
				col += n
			case 'D':
				col = max(col-n, 0)
			case 'K':
				if col < len(line) {
					line = line[:col]
				}
			}
			i = end
		case b < 0x20:
			// other control bytes do not print
		default:
			put(b)
		}
	}
	lines = append(lines, string(line))
	return normalize(strings.Join(lines, "\n"))
}

// normalize strips leftover escape sequences, trailing spaces on each line
// and trailing empty lines.
func normalize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
