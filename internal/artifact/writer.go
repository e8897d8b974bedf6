package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Compose renders the full artifact: header, one line per link, tail.
func Compose(s Sections, links []string) string {
	var b strings.Builder

	b.WriteString(s.Header)
	if s.Header != "" && !strings.HasSuffix(s.Header, "\n") {
		b.WriteByte('\n')
	}

	for _, link := range links {
		b.WriteString(link)
		b.WriteByte('\n')
	}

	b.WriteString(s.Tail)
	return b.String()
}

// Write replaces the artifact at path with the composed content.
func Write(path string, s Sections, links []string) error {
	return writeAtomic(path, Compose(s, links))
}

// WriteList writes links one per line with no header or tail.
func WriteList(path string, links []string) error {
	return writeAtomic(path, Compose(Sections{}, links))
}

// writeAtomic overwrites path through a temporary file in the same directory,
// so readers never observe a partially written artifact.
func writeAtomic(path, content string) (err error) {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod artifact: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}
