package editor

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"laporan/internal/content"
	"laporan/internal/upload"
)

var ErrTextTooShort = errors.New("report text too short")

// SaveFunc delivers a finalized document to a storage collaborator.
type SaveFunc func(ctx context.Context, doc content.ContentDocument) error

// Session owns one in-progress edit: the markup buffer, the cursor, the
// metadata of images already stored with the document, and the upload
// coordinator for images added during this session. The session is the
// coordinator's editing surface.
type Session struct {
	mu     sync.Mutex
	markup string
	cursor int
	images []content.ImageRef

	codec  *content.Codec
	coord  *upload.Coordinator
	minLen int
}

func NewSession(codec *content.Codec) *Session {
	return &Session{codec: codec, minLen: 1}
}

// SetMinLength raises the minimum length of the submitted text. The default
// only rejects empty documents.
func (s *Session) SetMinLength(n int) {
	if n > 0 {
		s.minLen = n
	}
}

// AttachUploader wires an upload coordinator to this session and returns
// it. Images enter the document only through the coordinator.
func (s *Session) AttachUploader(client upload.Client, opts upload.Options) *upload.Coordinator {
	s.coord = upload.NewCoordinator(client, s, opts)
	return s.coord
}

// PasteImage validates and enqueues pasted image bytes; the inline node is
// in the document at the cursor when this returns.
func (s *Session) PasteImage(ctx context.Context, name string, data []byte) (int64, error) {
	if s.coord == nil {
		return 0, errors.New("no uploader attached")
	}
	return s.coord.Enqueue(ctx, name, data)
}

// TypeText inserts plain text at the cursor. Newlines become break markers.
func (s *Session) TypeText(text string) {
	escaped := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAtCursor(escaped)
}

// LoadDocument replaces the session state with a stored document decoded
// back to editable markup.
func (s *Session) LoadDocument(doc content.ContentDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup = s.codec.Decode(doc.Text, doc.Images)
	s.images = append([]content.ImageRef(nil), doc.Images...)
	s.cursor = len(s.markup)
}

// RestoreMarkup replaces the buffer with previously stashed markup, as when
// resuming a draft.
func (s *Session) RestoreMarkup(markup string, images []content.ImageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup = markup
	s.images = append([]content.ImageRef(nil), images...)
	s.cursor = len(markup)
}

func (s *Session) Markup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup
}

// SetCursor clamps pos to the buffer bounds.
func (s *Session) SetCursor(pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.markup) {
		pos = len(s.markup)
	}
	s.cursor = pos
}

// DeleteImage removes the inline node for id from the document, as when the
// user deletes an image before submitting. Its metadata is pruned at
// finalize time.
func (s *Session) DeleteImage(id int64) {
	s.RemoveImage(id)
}

// InsertImage implements upload.Surface: the node lands at the cursor on
// its own line.
func (s *Session) InsertImage(id int64, src string) {
	tag := `<img src="` + html.EscapeString(src) + `" data-image-id="` + strconv.FormatInt(id, 10) + `">`
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAtCursor("<br>" + tag + "<br>")
}

// UpdateImageSource implements upload.Surface. The replacement can change
// the buffer length while the user keeps typing, so the cursor shifts with
// it.
func (s *Session) UpdateImageSource(id int64, src string) {
	re := imgTagByID(id)
	tag := `<img src="` + html.EscapeString(src) + `" data-image-id="` + strconv.FormatInt(id, 10) + `">`
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := re.FindStringIndex(s.markup)
	if loc == nil {
		return
	}
	s.markup = s.markup[:loc[0]] + tag + s.markup[loc[1]:]
	s.shiftCursor(loc[0], loc[1], len(tag))
}

// RemoveImage implements upload.Surface. The break marker the insert added
// after the node goes with it.
func (s *Session) RemoveImage(id int64) {
	re := regexp.MustCompile(imgTagByID(id).String() + `(?:<br>)?`)
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := re.FindStringIndex(s.markup)
	if loc == nil {
		return
	}
	s.markup = s.markup[:loc[0]] + s.markup[loc[1]:]
	s.shiftCursor(loc[0], loc[1], 0)
}

// Finalize waits for in-flight uploads, then runs the pipeline: normalize,
// encode, prune orphaned metadata, validate length. The session itself is
// left untouched, so a failed save can be retried.
func (s *Session) Finalize(ctx context.Context) (content.ContentDocument, error) {
	if s.coord != nil {
		if err := s.coord.Wait(ctx); err != nil {
			return content.ContentDocument{}, fmt.Errorf("await uploads: %w", err)
		}
	}

	s.mu.Lock()
	markup := s.markup
	s.mu.Unlock()
	candidates := s.CandidateImages()

	text := s.codec.Encode(content.Normalize(markup), candidates)
	if len(strings.TrimSpace(text)) < s.minLen {
		return content.ContentDocument{}, ErrTextTooShort
	}
	return content.ContentDocument{
		Text:   text,
		Images: content.Prune(text, candidates),
	}, nil
}

// Submit finalizes and saves. On save failure the edit state is intact and
// already-uploaded images keep their ids, so the user can retry without
// re-entering anything.
func (s *Session) Submit(ctx context.Context, save SaveFunc) (content.ContentDocument, error) {
	doc, err := s.Finalize(ctx)
	if err != nil {
		return content.ContentDocument{}, err
	}
	if err := save(ctx, doc); err != nil {
		return content.ContentDocument{}, fmt.Errorf("save report: %w", err)
	}
	return doc, nil
}

// CandidateImages is the full metadata candidate list: images the document
// was loaded with plus everything uploaded in this session.
func (s *Session) CandidateImages() []content.ImageRef {
	s.mu.Lock()
	out := append([]content.ImageRef(nil), s.images...)
	s.mu.Unlock()
	if s.coord != nil {
		out = append(out, s.coord.Images()...)
	}
	return out
}

// insertAtCursor assumes s.mu is held.
func (s *Session) insertAtCursor(fragment string) {
	s.markup = s.markup[:s.cursor] + fragment + s.markup[s.cursor:]
	s.cursor += len(fragment)
}

// shiftCursor keeps the cursor on the same logical position after the span
// [start,end) was replaced by newLen bytes. Assumes s.mu is held.
func (s *Session) shiftCursor(start, end, newLen int) {
	switch {
	case s.cursor >= end:
		s.cursor += newLen - (end - start)
	case s.cursor > start+newLen:
		s.cursor = start + newLen
	}
}

func imgTagByID(id int64) *regexp.Regexp {
	return regexp.MustCompile(`<img[^>]*data-image-id="` + strconv.FormatInt(id, 10) + `"[^>]*>`)
}
