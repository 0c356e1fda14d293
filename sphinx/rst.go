package sphinx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxIncludePasses bounds the include-resolution loop. Includes are inlined
// repeatedly until none remain; there is no cycle detection beyond this
// bound.
const maxIncludePasses = 50

var (
	includeRe   = regexp.MustCompile(`\.\. include:: ([^\n]+)`)
	codeBlockRe = regexp.MustCompile(`\.\. code-block:: ([^\n]+)\n[ \t]*\n((?:[ \t]+[^\n]*\n)+)`)

	refRoleRe = regexp.MustCompile(":ref:`([^`]+)`")
	docRoleRe = regexp.MustCompile(":doc:`([^`]+)`")
	// Roles rendered as inline code.
	codeRoleRe = regexp.MustCompile(":(?:class|func|meth|attr|exc|data|const):`([^`]+)`")

	admonitions = []string{"note", "warning", "important", "tip", "caution"}

	fenceAttrRe  = regexp.MustCompile("``` {([^}]+)}")
	rstLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\.rst\)`)
	imageLinkRe  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	blankRunsRe  = regexp.MustCompile(`\n[ \t]*\n[ \t]*\n`)
	staticPathRe = regexp.MustCompile(`^_static/`)
)

// PreprocessRST prepares RST content for conversion: include directives are
// inlined, code-block directives become fenced blocks, admonitions become
// block-quote callouts, and cross-reference roles become Markdown links or
// inline code.
func PreprocessRST(content, sourceFile string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	content = resolveIncludes(content, sourceFile, logger)
	content = rewriteDirectives(content)
	content = rewriteRoles(content)
	return content
}

// resolveIncludes inlines ".. include::" directives recursively by looping
// until no directives remain. A failed include degrades to a placeholder
// comment.
func resolveIncludes(content, sourceFile string, logger *slog.Logger) string {
	dir := filepath.Dir(sourceFile)

	for i := 0; i < maxIncludePasses && includeRe.MatchString(content); i++ {
		content = includeRe.ReplaceAllStringFunc(content, func(match string) string {
			ref := strings.TrimSpace(includeRe.FindStringSubmatch(match)[1])
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
			if err != nil {
				logger.Warn("resolve include", "ref", ref, "error", err)
				return fmt.Sprintf("<!-- Failed to include %s -->", ref)
			}
			return string(data)
		})
	}

	return content
}

// rewriteDirectives converts code-block directives into fenced blocks with
// language tags and admonition blocks into block-quote callouts.
func rewriteDirectives(content string) string {
	content = codeBlockRe.ReplaceAllStringFunc(content, func(match string) string {
		m := codeBlockRe.FindStringSubmatch(match)
		lang := strings.TrimSpace(m[1])
		return fmt.Sprintf("```%s\n%s```\n", lang, dedent(m[2]))
	})

	for _, directive := range admonitions {
		re := regexp.MustCompile(`\.\. ` + directive + `::\n[ \t]*\n((?:[ \t]+[^\n]*\n)+)`)
		title := strings.ToUpper(directive[:1]) + directive[1:]
		content = re.ReplaceAllStringFunc(content, func(match string) string {
			body := dedent(re.FindStringSubmatch(match)[1])
			var b strings.Builder
			fmt.Fprintf(&b, "> **%s**\n> \n", title)
			for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
				b.WriteString("> " + line + "\n")
			}
			return b.String()
		})
	}

	return content
}

// rewriteRoles converts cross-reference roles into Markdown links or inline
// code.
func rewriteRoles(content string) string {
	content = refRoleRe.ReplaceAllStringFunc(content, func(match string) string {
		target := refRoleRe.FindStringSubmatch(match)[1]
		anchor := strings.ReplaceAll(strings.ToLower(target), " ", "-")
		return fmt.Sprintf("[%s](#%s)", target, anchor)
	})

	content = docRoleRe.ReplaceAllString(content, "[$1]($1.md)")
	content = codeRoleRe.ReplaceAllString(content, "`$1`")
	return content
}

// PostprocessMarkdown cleans up converted Markdown: pandoc-style fence
// attributes become plain language tags, intra-doc links still pointing at
// .rst targets are rewritten to .md, the default static-asset prefix is
// stripped from image links, and runs of blank lines collapse.
func PostprocessMarkdown(content string) string {
	content = fenceAttrRe.ReplaceAllString(content, "```$1")
	content = rstLinkRe.ReplaceAllString(content, "[$1]($2.md)")

	content = imageLinkRe.ReplaceAllStringFunc(content, func(match string) string {
		m := imageLinkRe.FindStringSubmatch(match)
		path := staticPathRe.ReplaceAllString(m[2], "")
		return fmt.Sprintf("![%s](%s)", m[1], path)
	})

	for blankRunsRe.MatchString(content) {
		content = blankRunsRe.ReplaceAllString(content, "\n\n")
	}

	return strings.TrimSpace(content)
}

// dedent strips the common leading whitespace from every non-empty line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

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
	if margin <= 0 {
		return s
	}

	for i, line := range lines {
		if len(line) >= margin && strings.TrimLeft(line[:margin], " \t") == "" {
			lines[i] = line[margin:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
