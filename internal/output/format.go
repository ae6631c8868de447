// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"taskcli/internal/service"
)

const (
	// SectionSeparator is the separator line around section headers.
	SectionSeparator = "------------"

	// Text, JSON and YAML are the supported --output values.
	Text = "text"
	JSON = "json"
	YAML = "yaml"
)

// ValidFormat reports whether f is a supported --output value.
func ValidFormat(f string) bool {
	return f == Text || f == JSON || f == YAML
}

// Structured writes v as JSON or YAML. Text is handled by the caller.
func Structured(w io.Writer, format string, v any) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TITLE}" followed by "  ({CATEGORY})" when set.
func FormatTask(w io.Writer, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", task.ID, mark, normalizeTitle(task.Title))
	if task.Category != nil {
		line += fmt.Sprintf("  (%s)", normalizeName(task.Category.Name))
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %d\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", task.Description)
	}
	fmt.Fprintf(w, "completed:   %t\n", task.Completed)
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if task.Category != nil {
		fmt.Fprintf(w, "category:    %s (%d)\n", normalizeName(task.Category.Name), task.Category.ID)
	}
}

// FormatCategory formats a category line.
// Format: "{ID:>4}  {NAME}"
func FormatCategory(w io.Writer, c service.Category) {
	fmt.Fprintf(w, "%4d  %s\n", c.ID, normalizeName(c.Name))
}

// FormatUser formats the signed-in user.
func FormatUser(w io.Writer, u service.User) {
	fmt.Fprintf(w, "%s (id %d)\n", u.Username, u.ID)
}

// FormatSectionHeader formats a section header.
func FormatSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, SectionSeparator)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeName normalizes a category name for display.
func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}
