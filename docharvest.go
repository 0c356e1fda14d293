// Package docharvest harvests package documentation from registries, source
// repositories, and direct URLs, normalizes heterogeneous formats (plain
// text, reStructuredText, MkDocs sites, Sphinx projects) into Markdown, and
// persists the result to a filesystem layout for later publishing.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or external system (e.g., pypi/, git/,
// pandoc/), with format processors and orchestration in domain packages
// (plain/, mkdocs/, sphinx/, harvest/).
package docharvest
