// Package artifact renders fetched posts into the plain-text file that is
// summarized and attached to the notification email.
package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/subdigest/internal/forum"
	"github.com/ppiankov/subdigest/internal/privacy"
)

// Separator closes every post block.
var Separator = strings.Repeat("=", 80)

// Writer writes post batches to disk.
type Writer struct {
	redactor *privacy.Redactor
}

// NewWriter creates a writer. A nil redactor writes text verbatim.
func NewWriter(redactor *privacy.Redactor) *Writer {
	return &Writer{redactor: redactor}
}

// Render writes one block per post, in order:
//
//	Title: <title>
//	URL: <url>
//	Text: <body>
//	<80 x "=">
//	<blank line>
func (wr *Writer) Render(w io.Writer, posts []forum.Post) error {
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "Title: %s\nURL: %s\nText: %s\n%s\n\n",
			wr.redactor.Apply(p.Title), p.URL, wr.redactor.Apply(p.Body), Separator); err != nil {
			return fmt.Errorf("render post %s: %w", p.ID, err)
		}
	}
	return nil
}

// Write renders posts to path, replacing any existing file, and returns path.
func (wr *Writer) Write(posts []forum.Post, path string) (string, error) {
	var buf bytes.Buffer
	if err := wr.Render(&buf, posts); err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
