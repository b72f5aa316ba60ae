package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"laporan/internal/content"
)

// Report is the document payload shared by the target harian, media sosial
// and poskas resources: a date, the plain text body with [IMG:id] tokens,
// and metadata for every referenced image.
type Report struct {
	ID        int64              `json:"id,omitempty"`
	Date      string             `json:"tanggal"`
	Text      string             `json:"isi"`
	Images    []content.ImageRef `json:"images"`
	CreatedAt string             `json:"created_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

// Document returns the content pair carried by the report.
func (r Report) Document() content.ContentDocument {
	return content.ContentDocument{Text: r.Text, Images: r.Images}
}

// ReportService is one per-resource document endpoint. Category doubles as
// the upload destination tag for images embedded in this resource's
// documents.
type ReportService struct {
	c        *Client
	path     string
	category string
}

func (c *Client) TargetHarian() *ReportService {
	return &ReportService{c: c, path: "/target-harian", category: "target"}
}

func (c *Client) MediaSosial() *ReportService {
	return &ReportService{c: c, path: "/media-sosial", category: "media-sosial"}
}

func (c *Client) Poskas() *ReportService {
	return &ReportService{c: c, path: "/poskas", category: "poskas"}
}

func (s *ReportService) Category() string { return s.category }

func (s *ReportService) Create(ctx context.Context, r Report) (Report, error) {
	var out Report
	if err := s.c.doJSON(ctx, http.MethodPost, s.path, r, &out); err != nil {
		return Report{}, fmt.Errorf("create %s report: %w", s.category, err)
	}
	return out, nil
}

func (s *ReportService) Update(ctx context.Context, id int64, r Report) (Report, error) {
	var out Report
	path := s.path + "/" + strconv.FormatInt(id, 10)
	if err := s.c.doJSON(ctx, http.MethodPut, path, r, &out); err != nil {
		return Report{}, fmt.Errorf("update %s report %d: %w", s.category, id, err)
	}
	return out, nil
}

func (s *ReportService) Get(ctx context.Context, id int64) (Report, error) {
	var out Report
	path := s.path + "/" + strconv.FormatInt(id, 10)
	if err := s.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return Report{}, fmt.Errorf("get %s report %d: %w", s.category, id, err)
	}
	return out, nil
}

// ListMonth fetches all reports for a month given as "2006-01".
func (s *ReportService) ListMonth(ctx context.Context, month string) ([]Report, error) {
	var out []Report
	path := s.path + "?bulan=" + url.QueryEscape(month)
	if err := s.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list %s reports for %s: %w", s.category, month, err)
	}
	return out, nil
}
