// Package rst provides the built-in reStructuredText fallback converter:
// a lightweight reST-to-HTML pass followed by HTML-to-Markdown conversion.
// It is used when the external conversion tool is unavailable or fails.
package rst

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/docharvest"
)

// Ensure Converter implements docharvest.RSTConverter at compile time.
var _ docharvest.RSTConverter = (*Converter)(nil)

// Converter converts reST to Markdown without external tools. Conversion
// never fails hard: if the HTML leg errors, the original source is returned
// inside a fenced rst block.
type Converter struct {
	html docharvest.Converter
}

// NewConverter creates a fallback Converter using the given HTML-to-Markdown
// converter for the second leg.
func NewConverter(html docharvest.Converter) *Converter {
	return &Converter{html: html}
}

// ConvertRST converts reST source to Markdown.
func (c *Converter) ConvertRST(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	html := ToHTML(src)

	md, err := c.html.Convert(html)
	if err != nil {
		return fmt.Sprintf("```rst\n%s\n```", src), nil
	}
	return md, nil
}

// underlineChars are the section adornment characters recognized in title
// underlines.
const underlineChars = `=-~^"'` + "`" + `#*+.:_`

// ToHTML renders reST source as minimal HTML covering section titles
// (mapped to heading levels 1-3 in order of adornment appearance),
// paragraphs, literal blocks, inline literals, emphasis, and strong
// emphasis.
func ToHTML(src string) string {
	lines := strings.Split(src, "\n")
	adornments := make(map[byte]int)

	var b strings.Builder
	b.WriteString("<html><body>\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			i++
			continue
		}

		// Section title: a line followed by an underline at least as long.
		if i+1 < len(lines) && isUnderline(lines[i+1], len(trimmed)) && !strings.HasPrefix(line, " ") {
			ch := lines[i+1][0]
			level, ok := adornments[ch]
			if !ok {
				level = len(adornments) + 1
				adornments[ch] = level
			}
			if level > 3 {
				level = 3
			}
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, inline(trimmed), level)
			i += 2
			continue
		}

		// Literal block introduced by a paragraph ending in "::".
		if strings.HasSuffix(trimmed, "::") {
			text := strings.TrimSuffix(trimmed, "::")
			if strings.TrimSpace(text) != "" {
				fmt.Fprintf(&b, "<p>%s:</p>\n", inline(strings.TrimSpace(text)))
			}
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
				i++
			}
			var block []string
			for i < len(lines) && (strings.TrimSpace(lines[i]) == "" || strings.HasPrefix(lines[i], " ") || strings.HasPrefix(lines[i], "\t")) {
				block = append(block, lines[i])
				i++
			}
			for len(block) > 0 && strings.TrimSpace(block[len(block)-1]) == "" {
				block = block[:len(block)-1]
			}
			fmt.Fprintf(&b, "<pre>%s</pre>\n", escape(dedent(block)))
			continue
		}

		// Paragraph: collect until the next blank line.
		var para []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			para = append(para, strings.TrimSpace(lines[i]))
			i++
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", inline(strings.Join(para, " ")))
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

// isUnderline reports whether the line is a section adornment long enough
// to underline a title of the given length.
func isUnderline(line string, titleLen int) bool {
	trimmed := strings.TrimRight(line, " ")
	if len(trimmed) < 2 || len(trimmed) < titleLen {
		return false
	}
	ch := trimmed[0]
	if !strings.ContainsRune(underlineChars, rune(ch)) {
		return false
	}
	for j := 1; j < len(trimmed); j++ {
		if trimmed[j] != ch {
			return false
		}
	}
	return true
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// inline renders inline literals, strong emphasis, and emphasis.
func inline(s string) string {
	s = escape(s)

	s = replacePairs(s, "``", "<code>", "</code>")
	s = replacePairs(s, "**", "<strong>", "</strong>")
	s = replacePairs(s, "*", "<em>", "</em>")
	return s
}

// replacePairs substitutes consecutive pairs of the marker with open/close
// tags, leaving an unmatched trailing marker untouched.
func replacePairs(s, marker, openTag, closeTag string) string {
	parts := strings.Split(s, marker)
	if len(parts) < 3 {
		return s
	}

	var b strings.Builder
	b.WriteString(parts[0])
	i := 1
	for i < len(parts) {
		if i+1 < len(parts) {
			b.WriteString(openTag + parts[i] + closeTag + parts[i+1])
			i += 2
		} else {
			b.WriteString(marker + parts[i])
			i++
		}
	}
	return b.String()
}

// dedent strips the common leading whitespace from a literal block.
func dedent(lines []string) string {
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin < 0 {
		margin = 0
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= margin {
			out[i] = line[margin:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(out, "\n")
}
