package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"laporan/internal/content"
	"laporan/internal/upload"
)

type fakeUploadClient struct {
	mu    sync.Mutex
	calls int
	url   string
	delay time.Duration
	err   error
}

func (c *fakeUploadClient) UploadImage(_ context.Context, category, name string, _ []byte) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return "", c.err
	}
	if c.url != "" {
		return c.url, nil
	}
	return "/uploads/" + category + "/" + name, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestSession(client upload.Client) *Session {
	resolver := content.NewURLResolver("http://localhost:8080/api")
	s := NewSession(content.NewCodec(resolver))
	s.AttachUploader(client, upload.Options{
		Category: "target",
		MaxBytes: 5 << 20,
		Resolver: resolver,
	})
	return s
}

func TestSubmitPastedImageScenario(t *testing.T) {
	client := &fakeUploadClient{url: "/uploads/target/abc.png"}
	s := newTestSession(client)

	s.TypeText("Laporan hari ini")
	id, err := s.PasteImage(context.Background(), "abc.png", pngBytes(t))
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	s.TypeText("selesai")

	var saved content.ContentDocument
	doc, err := s.Submit(context.Background(), func(_ context.Context, d content.ContentDocument) error {
		saved = d
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := fmt.Sprintf("Laporan hari ini\n[IMG:%d]\nselesai", id)
	if doc.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", doc.Text, want)
	}
	if len(doc.Images) != 1 || doc.Images[0].ID != id || doc.Images[0].URL != "/uploads/target/abc.png" {
		t.Fatalf("unexpected images: %+v", doc.Images)
	}
	if saved.Text != doc.Text {
		t.Fatalf("save callback received %q", saved.Text)
	}
}

func TestSubmitAwaitsPendingUploads(t *testing.T) {
	client := &fakeUploadClient{delay: 50 * time.Millisecond}
	s := newTestSession(client)

	s.TypeText("sebelum")
	id, err := s.PasteImage(context.Background(), "lambat.png", pngBytes(t))
	if err != nil {
		t.Fatalf("paste: %v", err)
	}

	doc, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error { return nil })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(doc.Text, content.Token(id)) {
		t.Fatalf("submit must wait for uploads, text %q lacks token %d", doc.Text, id)
	}
}

func TestDeleteImagePrunesMetadata(t *testing.T) {
	s := newTestSession(&fakeUploadClient{})
	s.LoadDocument(content.ContentDocument{
		Text: "atas\n[IMG:1]\ntengah\n[IMG:2]\nbawah",
		Images: []content.ImageRef{
			{ID: 1, URL: "/uploads/target/u1.png"},
			{ID: 2, URL: "/uploads/target/u2.png"},
		},
	})
	s.DeleteImage(2)

	doc, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error { return nil })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if strings.Contains(doc.Text, "[IMG:2]") {
		t.Fatalf("deleted image still tokenized: %q", doc.Text)
	}
	if len(doc.Images) != 1 || doc.Images[0].ID != 1 {
		t.Fatalf("expected only image 1 to survive, got %+v", doc.Images)
	}
}

func TestFailedSaveKeepsSessionIntact(t *testing.T) {
	s := newTestSession(&fakeUploadClient{url: "/uploads/target/x.png"})
	s.TypeText("laporan penting")
	if _, err := s.PasteImage(context.Background(), "x.png", pngBytes(t)); err != nil {
		t.Fatalf("paste: %v", err)
	}

	_, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error {
		return errors.New("backend mati")
	})
	if err == nil {
		t.Fatalf("expected save error")
	}
	// Uploads finished before the failed save, so a retry must not need new
	// uploads or typing.
	doc, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error { return nil })
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if !strings.Contains(doc.Text, "laporan penting") || !strings.Contains(doc.Text, "[IMG:") {
		t.Fatalf("retry lost content: %q", doc.Text)
	}
}

func TestSubmitRejectsEmptyText(t *testing.T) {
	s := newTestSession(&fakeUploadClient{})
	_, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error {
		t.Fatal("save must not run for empty content")
		return nil
	})
	if !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
}

func TestFailedUploadLeavesRestOfDocument(t *testing.T) {
	s := newTestSession(&fakeUploadClient{err: errors.New("timeout")})
	s.TypeText("isi tetap ada")
	if _, err := s.PasteImage(context.Background(), "gagal.png", pngBytes(t)); err != nil {
		t.Fatalf("paste: %v", err)
	}

	doc, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error { return nil })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if doc.Text != "isi tetap ada" {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
	if len(doc.Images) != 0 {
		t.Fatalf("failed upload must not persist metadata: %+v", doc.Images)
	}
}

func TestLoadDocumentRoundTrip(t *testing.T) {
	s := newTestSession(&fakeUploadClient{})
	stored := content.ContentDocument{
		Text:   "pembuka\n[IMG:44]\npenutup",
		Images: []content.ImageRef{{ID: 44, URL: "/uploads/poskas/p.png"}},
	}
	s.LoadDocument(stored)

	doc, err := s.Finalize(context.Background())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if doc.Text != stored.Text {
		t.Fatalf("reload changed text:\n got %q\nwant %q", doc.Text, stored.Text)
	}
	if len(doc.Images) != 1 || doc.Images[0].ID != 44 {
		t.Fatalf("reload changed images: %+v", doc.Images)
	}
}

func TestImportMarkdown(t *testing.T) {
	client := &fakeUploadClient{url: "/uploads/target/foto.png"}
	s := newTestSession(client)

	source := "Capaian pagi\n\n![foto](foto.png)\n\nCapaian sore\n"
	err := s.ImportMarkdown(context.Background(), source, func(path string) ([]byte, error) {
		if path != "foto.png" {
			t.Fatalf("unexpected path %q", path)
		}
		return pngBytes(t), nil
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	doc, err := s.Submit(context.Background(), func(context.Context, content.ContentDocument) error { return nil })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(doc.Text, "[IMG:") {
		t.Fatalf("no token in %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Capaian pagi") || !strings.Contains(doc.Text, "Capaian sore") {
		t.Fatalf("text segments lost: %q", doc.Text)
	}
	if strings.Index(doc.Text, "Capaian pagi") > strings.Index(doc.Text, "[IMG:") ||
		strings.Index(doc.Text, "[IMG:") > strings.Index(doc.Text, "Capaian sore") {
		t.Fatalf("document order broken: %q", doc.Text)
	}
	if len(doc.Images) != 1 || doc.Images[0].URL != "/uploads/target/foto.png" {
		t.Fatalf("unexpected images: %+v", doc.Images)
	}
}
