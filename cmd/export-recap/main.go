// Command export-recap fetches one month of reports and complaints and
// writes them as an xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"laporan/internal/api"
	"laporan/internal/config"
	"laporan/internal/export"
)

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("export-recap", flag.ContinueOnError)
	fs.SetOutput(errOut)

	cfg := config.Load()
	apiBase := fs.String("api", cfg.APIBaseURL, "API base address")
	token := fs.String("token", cfg.Token, "bearer token")
	month := fs.String("month", time.Now().Format("2006-01"), "month to export (YYYY-MM)")
	outPath := fs.String("o", "", "output file (defaults to rekap-<month>.xlsx)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outPath == "" {
		*outPath = fmt.Sprintf("rekap-%s.xlsx", *month)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := api.NewClient(*apiBase, *token, cfg.HTTPTimeout)
	recap := export.Recap{Month: *month, Reports: map[string][]api.Report{}}

	for category, svc := range map[string]*api.ReportService{
		"target":       client.TargetHarian(),
		"media-sosial": client.MediaSosial(),
		"poskas":       client.Poskas(),
	} {
		reports, err := svc.ListMonth(ctx, *month)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
			return 1
		}
		recap.Reports[category] = reports
	}
	komplain, err := client.Komplain().ListMonth(ctx, *month)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 1
	}
	recap.Komplain = komplain

	f := export.Workbook(recap)
	if err := f.SaveAs(*outPath); err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: write workbook: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "wrote %s\n", *outPath)
	return 0
}
