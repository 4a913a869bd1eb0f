package render

import "strings"

// WrapText breaks text into lines no wider than maxWidth under the surface's
// current font. Newlines always break; each line between them is wrapped on
// single spaces. A word wider than maxWidth gets a line of its own; the
// first word of a line never breaks.
func WrapText(s Surface, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(s, para, maxWidth)...)
	}
	return lines
}

func wrapLine(s Surface, text string, maxWidth float64) []string {
	words := strings.Split(strings.ReplaceAll(text, "\t", " "), " ")
	var (
		lines []string
		line  string
	)
	for n, w := range words {
		test := line + w + " "
		if s.MeasureText(test) > maxWidth && n > 0 {
			lines = append(lines, strings.TrimRight(line, " "))
			line = w + " "
			continue
		}
		line = test
	}
	return append(lines, strings.TrimRight(line, " "))
}
