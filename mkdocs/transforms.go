package mkdocs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// The three equivalent bracket forms of a code-inclusion placeholder:
// {* file.py *}, {! file.py !}, and {= file.py =}.
var inclusionRes = []*regexp.Regexp{
	regexp.MustCompile(`\{\*\s+([^}]+)\s*\*\}`),
	regexp.MustCompile(`\{!\s+([^}]+)\s*!\}`),
	regexp.MustCompile(`\{=\s+([^}]+)\s*=\}`),
}

// linkRe matches markdown links and image links: [text](url), ![alt](url).
var linkRe = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)

// ResolveInclusions replaces code-inclusion placeholders with fenced code
// blocks containing the referenced file. The reference is resolved by
// searching upward from the current file toward the documentation root
// (stopping at the mkdocs.yml marker), falling back to a path relative to
// the current file. A missing reference produces a fenced block naming the
// missing file rather than an error.
func ResolveInclusions(content, currentFile string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	for _, re := range inclusionRes {
		content = re.ReplaceAllStringFunc(content, func(match string) string {
			parts := strings.Fields(re.FindStringSubmatch(match)[1])
			if len(parts) == 0 {
				return match
			}
			fileRef := parts[0]

			var highlight string
			for _, part := range parts[1:] {
				if strings.HasPrefix(part, "hl[") {
					highlight = part
					break
				}
			}

			target := resolveReference(fileRef, currentFile)
			if target == "" {
				logger.Warn("referenced file not found", "ref", fileRef, "from", currentFile)
				return fmt.Sprintf("```\n# File not found: %s\n```", fileRef)
			}

			data, err := os.ReadFile(target)
			if err != nil {
				logger.Warn("read included file", "ref", fileRef, "error", err)
				return fmt.Sprintf("```\n# Error including file: %s\n```", fileRef)
			}

			lang := strings.TrimPrefix(filepath.Ext(target), ".")
			if highlight != "" {
				return fmt.Sprintf("```%s\n# Highlight: %s\n%s\n```", lang, highlight, string(data))
			}
			return fmt.Sprintf("```%s\n%s\n```", lang, string(data))
		})
	}

	return content
}

// resolveReference searches upward from the current file's directory for
// the referenced file, stopping at the documentation root marker, then
// falls back to a path relative to the current file. Returns "" when the
// file cannot be found.
func resolveReference(fileRef, currentFile string) string {
	dir := filepath.Dir(currentFile)
	for {
		tryPath := filepath.Join(dir, fileRef)
		if fileExists(tryPath) {
			return tryPath
		}
		if fileExists(filepath.Join(dir, ConfigFile)) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	fallback := filepath.Join(filepath.Dir(currentFile), fileRef)
	if fileExists(fallback) {
		return fallback
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// RewriteRelativeLinks re-roots internal relative links against the current
// file. External links, anchors, and absolute paths are left untouched, as
// is any link that cannot be made relative to the current file's directory.
func RewriteRelativeLinks(content, currentFile string) string {
	dir := filepath.Dir(currentFile)

	return linkRe.ReplaceAllStringFunc(content, func(match string) string {
		m := linkRe.FindStringSubmatch(match)
		bang, text, link := m[1], m[2], m[3]

		if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") ||
			strings.HasPrefix(link, "#") || strings.HasPrefix(link, "/") {
			return match
		}

		resolved := filepath.Join(dir, filepath.FromSlash(link))
		rel, err := filepath.Rel(dir, resolved)
		if err != nil || strings.HasPrefix(rel, "..") {
			return match
		}

		return fmt.Sprintf("%s[%s](%s)", bang, text, filepath.ToSlash(rel))
	})
}
