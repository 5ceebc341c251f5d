package snippet

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrUnresolvedVariable is returned when a snippet's template references
// a placeholder with no value in variables or the snippet's defaults.
type ErrUnresolvedVariable struct {
	SnippetID string
	Variable  string
}

func (e *ErrUnresolvedVariable) Error() string {
	return fmt.Sprintf("snippet %q: unresolved variable %q", e.SnippetID, e.Variable)
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Render resolves s.Template's {name} placeholders from variables, then
// from s.Defaults, returning ErrUnresolvedVariable for the first
// placeholder neither supplies.
func Render(s Snippet, variables map[string]string) (string, error) {
	var firstErr error
	rendered := placeholderRe.ReplaceAllStringFunc(s.Template, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := match[1 : len(match)-1]
		if v, ok := variables[name]; ok {
			return v
		}
		if v, ok := s.Defaults[name]; ok {
			return v
		}
		firstErr = &ErrUnresolvedVariable{SnippetID: s.ID, Variable: name}
		return match
	})
	if firstErr != nil {
		return "", firstErr
	}
	return rendered, nil
}

// Result is the outcome of applying a snippet to a document.
type Result struct {
	Text      string
	Rendered  string
}

// Apply renders s against variables and inserts the result into text
// per s.InsertionPoint, returning the new text and the snippet's
// rendered canonical form for audit. Identical inputs always produce
// identical output.
func Apply(text string, s Snippet, variables map[string]string) (Result, error) {
	rendered, err := Render(s, variables)
	if err != nil {
		return Result{}, err
	}

	var newText string
	switch s.InsertionPoint {
	case InsertionPrepend:
		newText = prepend(text, rendered)
	case InsertionAppend:
		newText = append_(text, rendered)
	case InsertionSection:
		newText = applySection(text, s.SectionHeader, rendered)
	default:
		return Result{}, fmt.Errorf("snippet %q: unknown insertion_point %q", s.ID, s.InsertionPoint)
	}

	return Result{Text: newText, Rendered: rendered}, nil
}

func prepend(text, rendered string) string {
	if text == "" {
		return rendered
	}
	return rendered + "\n\n" + text
}

func append_(text, rendered string) string {
	if text == "" {
		return rendered
	}
	return text + "\n\n" + rendered
}

// applySection replaces the content of an existing section (matched by
// header, case-insensitive and trimmed) up to the next heading-like
// line, or appends a new section with header and rendered if the
// header is not present.
func applySection(text, header, rendered string) string {
	lines := splitKeepEnds(text)
	headerNorm := strings.ToLower(strings.TrimSpace(header))

	headerIdx := -1
	for i, l := range lines {
		if strings.ToLower(strings.TrimSpace(stripEnd(l))) == headerNorm {
			headerIdx = i
			break
		}
	}

	if headerIdx < 0 {
		if text == "" {
			return header + "\n" + rendered
		}
		return text + "\n\n" + header + "\n" + rendered
	}

	endIdx := len(lines)
	for i := headerIdx + 1; i < len(lines); i++ {
		if isHeadingLike(stripEnd(lines[i])) {
			endIdx = i
			break
		}
	}

	var b strings.Builder
	for i := 0; i < headerIdx; i++ {
		b.WriteString(lines[i])
	}
	b.WriteString(lines[headerIdx])
	b.WriteString(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		b.WriteString(lineEnding(lines, headerIdx))
	}
	for i := endIdx; i < len(lines); i++ {
		b.WriteString(lines[i])
	}
	return b.String()
}

// isHeadingLike reports whether line looks like the start of the next
// section: a markdown-style heading, or an uppercase line of length >= 3.
func isHeadingLike(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if len(trimmed) >= 3 && trimmed == strings.ToUpper(trimmed) && strings.ToLower(trimmed) != strings.ToUpper(trimmed) {
		return true
	}
	return false
}

// splitKeepEnds splits text into lines, preserving each line's
// original line-ending characters so reassembly is byte-for-byte exact.
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func stripEnd(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func lineEnding(lines []string, idx int) string {
	l := lines[idx]
	if strings.HasSuffix(l, "\r\n") {
		return "\r\n"
	}
	if strings.HasSuffix(l, "\n") {
		return "\n"
	}
	return "\n"
}
