package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"laporan/internal/content"
)

var mdRenderer = goldmark.New()

// ImportMarkdown fills the session from a Markdown source, the authoring
// form used by the CLI. Remote image references are kept as inline nodes;
// local ones are read through readFile and enqueued on the coordinator in
// document order, so the final document order matches the source order.
func (s *Session) ImportMarkdown(ctx context.Context, source string, readFile func(path string) ([]byte, error)) error {
	var b strings.Builder
	if err := mdRenderer.Convert([]byte(source), &b); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	markup := b.String()

	s.mu.Lock()
	s.markup = ""
	s.cursor = 0
	s.images = nil
	s.mu.Unlock()

	last := 0
	for _, img := range content.FindInlineImages(markup) {
		s.appendMarkup(markup[last:img.Start])
		last = img.End
		if isRemote(img.Src) {
			s.appendMarkup(markup[img.Start:img.End])
			continue
		}
		data, err := readFile(img.Src)
		if err != nil {
			return fmt.Errorf("read image %q: %w", img.Src, err)
		}
		if _, err := s.PasteImage(ctx, baseName(img.Src), data); err != nil {
			return fmt.Errorf("enqueue image %q: %w", img.Src, err)
		}
	}
	s.appendMarkup(markup[last:])
	return nil
}

func (s *Session) appendMarkup(fragment string) {
	if fragment == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAtCursor(fragment)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "/uploads/")
}

func baseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
