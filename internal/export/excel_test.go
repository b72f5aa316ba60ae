package export

import (
	"testing"

	"laporan/internal/api"
	"laporan/internal/content"
)

func TestWorkbookSheets(t *testing.T) {
	f := Workbook(Recap{
		Month: "2025-06",
		Reports: map[string][]api.Report{
			"target": {{
				Date:   "2025-06-01",
				Text:   "Laporan hari ini\n[IMG:555]\nselesai",
				Images: []content.ImageRef{{ID: 555, URL: "/uploads/target/abc.png"}},
			}},
		},
		Komplain: []api.Komplain{
			{Date: "2025-06-02", Title: "AC rusak", Description: "ruang depan", Status: "baru"},
		},
	})

	for _, sheet := range []string{"Target Harian", "Media Sosial", "Poskas", "Komplain"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Fatalf("missing sheet %q", sheet)
		}
	}
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
		t.Fatal("default sheet not removed")
	}

	got, err := f.GetCellValue("Target Harian", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Laporan hari ini\n[IMG:555]\nselesai" {
		t.Fatalf("unexpected isi cell: %q", got)
	}
	if got, _ := f.GetCellValue("Target Harian", "C2"); got != "1" {
		t.Fatalf("unexpected image count: %q", got)
	}
	if got, _ := f.GetCellValue("Target Harian", "D2"); got != "/uploads/target/abc.png" {
		t.Fatalf("unexpected image column: %q", got)
	}
	if got, _ := f.GetCellValue("Komplain", "D2"); got != "baru" {
		t.Fatalf("unexpected status cell: %q", got)
	}
}
