package content

// ImageRef is the stored metadata for one image referenced by a document.
// IDs are allocated client-side at upload time and never reused.
type ImageRef struct {
	ID   int64  `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// ContentDocument is the canonical stored form of a report body: plain text
// with [IMG:<id>] tokens, plus metadata for every referenced image.
type ContentDocument struct {
	Text   string     `json:"text"`
	Images []ImageRef `json:"images"`
}

func findImage(images []ImageRef, id int64) (ImageRef, bool) {
	for _, img := range images {
		if img.ID == id {
			return img, true
		}
	}
	return ImageRef{}, false
}
