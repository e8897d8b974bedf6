package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Sections holds the parts of an artifact that are carried over between runs.
// Header and Tail are raw text, line terminators included.
type Sections struct {
	Header string
	Tail   string
	// Found reports whether a previous artifact existed.
	Found bool
}

// Read loads the preserved sections of the artifact at path. A missing file
// yields the default header and no tail.
func Read(path string, markers []string, defaultHeader []string) (Sections, error) {
	if path == "" {
		return Sections{}, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSections(defaultHeader), nil
	}
	if err != nil {
		return Sections{}, fmt.Errorf("read artifact %s: %w", path, err)
	}

	sections := Parse(string(data), markers, defaultHeader)
	sections.Found = true
	return sections, nil
}

// Parse splits content into its header and tail.
//
// The header is the leading run of comment and blank lines; it must contain at
// least one comment line, otherwise the default header is used. The tail
// starts at the last line after the header that contains any of markers and
// runs to the end of content.
func Parse(content string, markers []string, defaultHeader []string) Sections {
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	headerEnd, offset, comments := 0, 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			comments++
		} else if trimmed != "" {
			break
		}
		headerEnd++
		offset += len(line)
	}

	var s Sections
	if comments > 0 {
		s.Header = content[:offset]
	} else {
		s.Header = joinLines(defaultHeader)
	}

	tailOffset := len(content)
	found := false
	pos := len(content)
	for i := len(lines) - 1; i >= headerEnd; i-- {
		pos -= len(lines[i])
		if containsAny(lines[i], markers) {
			tailOffset = pos
			found = true
			break
		}
	}
	if found {
		s.Tail = content[tailOffset:]
	}

	return s
}

// DefaultSections is what a run starts from when no previous artifact exists.
func DefaultSections(defaultHeader []string) Sections {
	return Sections{Header: joinLines(defaultHeader)}
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
