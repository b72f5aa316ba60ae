package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

type uploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
}

// UploadImage sends one image to the backend's upload endpoint with its
// destination category tag and returns the permanent address. Safe to call
// again manually after a failure; there is no automatic retry here.
func (c *Client) UploadImage(ctx context.Context, category, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("category", category); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	if out.URL != "" {
		return out.URL, nil
	}
	if out.Path != "" {
		return out.Path, nil
	}
	return "", fmt.Errorf("upload %q: backend returned no address", name)
}
