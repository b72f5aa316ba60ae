package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Komplain is a complaint record. Complaints carry no embedded images, so
// they bypass the content pipeline entirely.
type Komplain struct {
	ID          int64  `json:"id,omitempty"`
	Date        string `json:"tanggal"`
	Title       string `json:"judul"`
	Description string `json:"deskripsi"`
	Status      string `json:"status"`
}

type KomplainService struct {
	c *Client
}

func (c *Client) Komplain() *KomplainService {
	return &KomplainService{c: c}
}

func (s *KomplainService) Create(ctx context.Context, k Komplain) (Komplain, error) {
	var out Komplain
	if err := s.c.doJSON(ctx, http.MethodPost, "/komplain", k, &out); err != nil {
		return Komplain{}, fmt.Errorf("create komplain: %w", err)
	}
	return out, nil
}

func (s *KomplainService) UpdateStatus(ctx context.Context, id int64, status string) (Komplain, error) {
	var out Komplain
	path := "/komplain/" + strconv.FormatInt(id, 10) + "/status"
	if err := s.c.doJSON(ctx, http.MethodPut, path, map[string]string{"status": status}, &out); err != nil {
		return Komplain{}, fmt.Errorf("update komplain %d: %w", id, err)
	}
	return out, nil
}

func (s *KomplainService) ListMonth(ctx context.Context, month string) ([]Komplain, error) {
	var out []Komplain
	path := "/komplain?bulan=" + url.QueryEscape(month)
	if err := s.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list komplain for %s: %w", month, err)
	}
	return out, nil
}
