// Command audit-image scans a month of stored reports for drift between
// the report text and its image metadata: [IMG:id] tokens that have no
// metadata entry, and metadata entries no token references. With --fix it
// rewrites the affected reports through the update endpoint.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"laporan/internal/api"
	"laporan/internal/config"
	"laporan/internal/content"
)

type runOptions struct {
	APIBaseURL string
	Token      string
	Month      string
	Types      []string
	Fix        bool
	Yes        bool
	Out        io.Writer
	ErrOut     io.Writer
}

type runStats struct {
	ReportsScanned int
	OrphanTokens   int
	OrphanRefs     int
	FixedReports   int
	FixErrors      int
}

type finding struct {
	Category     string
	ReportID     int64
	Date         string
	OrphanTokens []int64
	OrphanRefs   []content.ImageRef
}

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("audit-image", flag.ContinueOnError)
	fs.SetOutput(errOut)

	cfg := config.Load()
	opts := runOptions{Out: out, ErrOut: errOut}
	fs.StringVar(&opts.APIBaseURL, "api", cfg.APIBaseURL, "API base address")
	fs.StringVar(&opts.Token, "token", cfg.Token, "bearer token")
	fs.StringVar(&opts.Month, "month", time.Now().Format("2006-01"), "month to audit (YYYY-MM)")
	types := fs.String("type", "target,media-sosial,poskas", "comma-separated categories to audit")
	fs.BoolVar(&opts.Fix, "fix", false, "rewrite reports to remove orphaned tokens and metadata")
	fs.BoolVar(&opts.Yes, "yes", false, "auto-confirm fixes (use with --fix)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		_, _ = fmt.Fprintln(errOut, "usage: audit-image [--api <addr>] [--month <YYYY-MM>] [--type <list>] [--fix] [--yes]")
		return 2
	}
	if opts.Yes && !opts.Fix {
		_, _ = fmt.Fprintln(errOut, "ERROR: --yes requires --fix")
		return 2
	}
	for _, t := range strings.Split(*types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			opts.Types = append(opts.Types, t)
		}
	}

	stats, err := execute(context.Background(), opts, cfg.HTTPTimeout)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "month=%s reports=%d orphan_tokens=%d orphan_refs=%d fixed=%d fix_errors=%d\n",
		opts.Month, stats.ReportsScanned, stats.OrphanTokens, stats.OrphanRefs, stats.FixedReports, stats.FixErrors)
	if stats.FixErrors > 0 {
		return 1
	}
	if !opts.Fix && stats.OrphanTokens+stats.OrphanRefs > 0 {
		return 1
	}
	return 0
}

func execute(ctx context.Context, opts runOptions, timeout time.Duration) (runStats, error) {
	var stats runStats
	client := api.NewClient(opts.APIBaseURL, opts.Token, timeout)

	for _, category := range opts.Types {
		svc, err := serviceForCategory(client, category)
		if err != nil {
			return stats, err
		}
		reports, err := svc.ListMonth(ctx, opts.Month)
		if err != nil {
			return stats, err
		}
		for _, rep := range reports {
			stats.ReportsScanned++
			f := auditReport(category, rep)
			if len(f.OrphanTokens) == 0 && len(f.OrphanRefs) == 0 {
				continue
			}
			stats.OrphanTokens += len(f.OrphanTokens)
			stats.OrphanRefs += len(f.OrphanRefs)
			printFinding(opts.Out, f)

			if !opts.Fix {
				continue
			}
			ok := opts.Yes
			if !ok {
				ok, err = promptYesNo(fmt.Sprintf("Rewrite %s report #%d? [y/N]: ", category, rep.ID))
				if err != nil {
					return stats, err
				}
			}
			if !ok {
				continue
			}
			fixed := fixDocument(rep.Document())
			rep.Text = fixed.Text
			rep.Images = fixed.Images
			if _, err := svc.Update(ctx, rep.ID, rep); err != nil {
				stats.FixErrors++
				_, _ = fmt.Fprintf(opts.ErrOut, "ERROR: update %s report %d: %v\n", category, rep.ID, err)
				continue
			}
			stats.FixedReports++
		}
	}
	return stats, nil
}

// auditReport lists both drift directions for one report.
func auditReport(category string, rep api.Report) finding {
	f := finding{Category: category, ReportID: rep.ID, Date: rep.Date}

	referenced := content.Referenced(rep.Text)
	known := map[int64]struct{}{}
	for _, img := range rep.Images {
		known[img.ID] = struct{}{}
		if _, ok := referenced[img.ID]; !ok {
			f.OrphanRefs = append(f.OrphanRefs, img)
		}
	}
	for id := range referenced {
		if _, ok := known[id]; !ok {
			f.OrphanTokens = append(f.OrphanTokens, id)
		}
	}
	sort.Slice(f.OrphanTokens, func(i, j int) bool { return f.OrphanTokens[i] < f.OrphanTokens[j] })
	return f
}

// fixDocument removes tokens that resolve to nothing and metadata nothing
// references. Lines that held only an orphaned token disappear with it.
func fixDocument(doc content.ContentDocument) content.ContentDocument {
	known := map[int64]struct{}{}
	for _, img := range doc.Images {
		known[img.ID] = struct{}{}
	}
	text := doc.Text
	for id := range content.Referenced(text) {
		if _, ok := known[id]; !ok {
			text = stripToken(text, id)
		}
	}
	return content.ContentDocument{
		Text:   text,
		Images: content.Prune(text, doc.Images),
	}
}

func stripToken(text string, id int64) string {
	tok := content.Token(id)
	if text == tok {
		return ""
	}
	text = strings.ReplaceAll(text, "\n"+tok+"\n", "\n")
	text = strings.TrimPrefix(text, tok+"\n")
	text = strings.TrimSuffix(text, "\n"+tok)
	return strings.ReplaceAll(text, tok, "")
}

func printFinding(out io.Writer, f finding) {
	_, _ = fmt.Fprintf(out, "%s #%d (%s):\n", f.Category, f.ReportID, f.Date)
	for _, id := range f.OrphanTokens {
		_, _ = fmt.Fprintf(out, "  token [IMG:%d] has no metadata\n", id)
	}
	for _, img := range f.OrphanRefs {
		_, _ = fmt.Fprintf(out, "  metadata %d (%s) is not referenced\n", img.ID, img.URL)
	}
}

func promptYesNo(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal (use --yes to auto-confirm)")
	}
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func serviceForCategory(client *api.Client, category string) (*api.ReportService, error) {
	switch category {
	case "target":
		return client.TargetHarian(), nil
	case "media-sosial":
		return client.MediaSosial(), nil
	case "poskas":
		return client.Poskas(), nil
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}
