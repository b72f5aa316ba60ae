// Package export renders monthly recaps as xlsx workbooks, one sheet per
// report category plus one for complaints.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"laporan/internal/api"
	"laporan/internal/content"
)

// sheetNames maps the category slug used by the API to the sheet title.
var sheetNames = map[string]string{
	"target":       "Target Harian",
	"media-sosial": "Media Sosial",
	"poskas":       "Poskas",
}

const komplainSheet = "Komplain"

// Recap is one month of dashboard data grouped by category.
type Recap struct {
	Month    string
	Reports  map[string][]api.Report
	Komplain []api.Komplain
}

// Workbook builds the xlsx file for a recap. Report text keeps its image
// tokens; the image addresses go in their own column so the recap stays
// greppable.
func Workbook(r Recap) *excelize.File {
	f := excelize.NewFile()
	for _, category := range []string{"target", "media-sosial", "poskas"} {
		writeReportSheet(f, sheetNames[category], r.Reports[category])
	}
	writeKomplainSheet(f, r.Komplain)
	f.DeleteSheet("Sheet1")
	return f
}

func writeReportSheet(f *excelize.File, sheet string, reports []api.Report) {
	f.NewSheet(sheet)
	for i, h := range []string{"tanggal", "isi", "jumlah gambar", "gambar"} {
		f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for row, rep := range reports {
		n := row + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", n), rep.Date)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", n), rep.Text)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", n), len(rep.Images))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", n), joinImageURLs(rep.Images))
	}
}

func writeKomplainSheet(f *excelize.File, items []api.Komplain) {
	f.NewSheet(komplainSheet)
	for i, h := range []string{"tanggal", "judul", "deskripsi", "status"} {
		f.SetCellValue(komplainSheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for row, k := range items {
		n := row + 2
		f.SetCellValue(komplainSheet, fmt.Sprintf("A%d", n), k.Date)
		f.SetCellValue(komplainSheet, fmt.Sprintf("B%d", n), k.Title)
		f.SetCellValue(komplainSheet, fmt.Sprintf("C%d", n), k.Description)
		f.SetCellValue(komplainSheet, fmt.Sprintf("D%d", n), k.Status)
	}
}

func joinImageURLs(images []content.ImageRef) string {
	if len(images) == 0 {
		return ""
	}
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return strings.Join(urls, "\n")
}
