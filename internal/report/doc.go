// Package report renders scan results.
//
// Three formats are provided:
//   - SimpleWriter: colored text for the terminal
//   - JSONWriter: JSON for tooling and CI pipelines
//   - MarkdownWriter: Markdown with tables and a mermaid pie chart
//
// All writers implement Writer and can be combined with MultiWriter.
package report
