// Package ui renders the run's stage report on the console.
//
// Console prints a banner, numbered stage headings, ✓/✗/⚠ status lines and
// indented key/value details. Output is styled with lipgloss only when
// stdout is a color-capable terminal; redirected output stays plain text.
package ui
