package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"laporan/internal/api"
	"laporan/internal/config"
	"laporan/internal/content"
	"laporan/internal/draft"
	"laporan/internal/editor"
	"laporan/internal/upload"
)

const usage = `usage: lapor <command> [flags]

commands:
  submit   compose a report from a markdown file and send it
  show     fetch one report and print its text and images
  drafts   list, retry or remove stashed drafts
`

func main() {
	level := parseLogLevel(os.Getenv("LAPORAN_DEBUG_LEVEL"))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(errOut, usage)
		return 2
	}
	cfg := config.Load()
	switch args[0] {
	case "submit":
		return runSubmit(cfg, args[1:], out, errOut)
	case "show":
		return runShow(cfg, args[1:], out, errOut)
	case "drafts":
		return runDrafts(cfg, args[1:], out, errOut)
	default:
		_, _ = fmt.Fprintf(errOut, "unknown command %q\n%s", args[0], usage)
		return 2
	}
}

func runSubmit(cfg config.Config, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("lapor submit", flag.ContinueOnError)
	fs.SetOutput(errOut)
	typ := fs.String("type", "", "report type: target, medsos or poskas")
	date := fs.String("date", time.Now().Format("2006-01-02"), "report date (YYYY-MM-DD)")
	file := fs.String("f", "", "markdown source file")
	id := fs.Int64("id", 0, "existing report id to update (0 creates a new one)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		_, _ = fmt.Fprintln(errOut, "ERROR: -f is required")
		return 2
	}

	client, svc, err := serviceFor(cfg, *typ)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 2
	}
	source, err := os.ReadFile(*file)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: read source: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	session := newSession(cfg, client, svc.Category())
	baseDir := filepath.Dir(*file)
	err = session.ImportMarkdown(ctx, string(source), func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return os.ReadFile(path)
	})
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: import markdown: %v\n", err)
		return 1
	}

	doc, err := session.Submit(ctx, saveReport(svc, *id, *date))
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: submit: %v\n", err)
		return stashDraft(ctx, cfg, session, svc.Category(), *date, *id, out, errOut)
	}
	_, _ = fmt.Fprintf(out, "submitted %s report for %s (%d images)\n", svc.Category(), *date, len(doc.Images))
	return 0
}

// stashDraft preserves the composed markup after a failed save so the user
// can retry without re-uploading. Already-uploaded images keep their ids.
func stashDraft(ctx context.Context, cfg config.Config, session *editor.Session, category, date string, remoteID int64, out io.Writer, errOut io.Writer) int {
	store, err := draft.Open(cfg.DraftDBPath)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: open draft store: %v\n", err)
		return 1
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: init draft store: %v\n", err)
		return 1
	}
	id, err := store.Stash(ctx, draft.Draft{
		Category:   category,
		ReportDate: date,
		RemoteID:   remoteID,
		Markup:     session.Markup(),
		Images:     session.CandidateImages(),
	})
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: stash draft: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "draft stashed as %s; retry with: lapor drafts retry -id %s\n", id, id)
	return 1
}

func runShow(cfg config.Config, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("lapor show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	typ := fs.String("type", "", "report type: target, medsos or poskas")
	id := fs.Int64("id", 0, "report id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *id == 0 {
		_, _ = fmt.Fprintln(errOut, "ERROR: -id is required")
		return 2
	}
	_, svc, err := serviceFor(cfg, *typ)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()
	rep, err := svc.Get(ctx, *id)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "%s %s #%d\n\n%s\n", svc.Category(), rep.Date, rep.ID, rep.Text)
	if len(rep.Images) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, img := range rep.Images {
			_, _ = fmt.Fprintf(out, "  [IMG:%d] %s\n", img.ID, img.URL)
		}
	}
	return 0
}

func runDrafts(cfg config.Config, args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(errOut, "usage: lapor drafts <list|retry|rm> [flags]")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := draft.Open(cfg.DraftDBPath)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: open draft store: %v\n", err)
		return 1
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: init draft store: %v\n", err)
		return 1
	}

	switch args[0] {
	case "list":
		all, err := store.List(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
			return 1
		}
		if len(all) == 0 {
			_, _ = fmt.Fprintln(out, "no drafts")
			return 0
		}
		for _, d := range all {
			_, _ = fmt.Fprintf(out, "%s  %-12s %s  updated %s\n", d.ID, d.Category, d.ReportDate, d.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return 0
	case "retry":
		return retryDraft(ctx, cfg, store, args[1:], out, errOut)
	case "rm":
		fs := flag.NewFlagSet("lapor drafts rm", flag.ContinueOnError)
		fs.SetOutput(errOut)
		id := fs.String("id", "", "draft id")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if err := store.Delete(ctx, *id); err != nil {
			_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
			return 1
		}
		return 0
	default:
		_, _ = fmt.Fprintf(errOut, "unknown drafts command %q\n", args[0])
		return 2
	}
}

func retryDraft(ctx context.Context, cfg config.Config, store *draft.Store, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("lapor drafts retry", flag.ContinueOnError)
	fs.SetOutput(errOut)
	id := fs.String("id", "", "draft id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	d, err := store.Get(ctx, *id)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 1
	}

	client, svc, err := serviceForCategory(cfg, d.Category)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: %v\n", err)
		return 1
	}
	session := newSession(cfg, client, svc.Category())
	session.RestoreMarkup(d.Markup, d.Images)

	doc, err := session.Submit(ctx, saveReport(svc, d.RemoteID, d.ReportDate))
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "ERROR: submit: %v\n", err)
		return 1
	}
	if err := store.Delete(ctx, d.ID); err != nil && !errors.Is(err, draft.ErrNotFound) {
		slog.Warn("remove submitted draft", "id", d.ID, "err", err)
	}
	_, _ = fmt.Fprintf(out, "submitted %s report for %s (%d images)\n", svc.Category(), d.ReportDate, len(doc.Images))
	return 0
}

func newSession(cfg config.Config, client *api.Client, category string) *editor.Session {
	resolver := &content.URLResolver{AssetBase: cfg.AssetBaseURL}
	session := editor.NewSession(content.NewCodec(resolver))
	session.AttachUploader(client, upload.Options{
		Category: category,
		MaxBytes: cfg.UploadLimitFor(category),
		Resolver: resolver,
	})
	return session
}

func saveReport(svc *api.ReportService, id int64, date string) editor.SaveFunc {
	return func(ctx context.Context, doc content.ContentDocument) error {
		rep := api.Report{Date: date, Text: doc.Text, Images: doc.Images}
		var err error
		if id > 0 {
			_, err = svc.Update(ctx, id, rep)
		} else {
			_, err = svc.Create(ctx, rep)
		}
		return err
	}
}

func serviceFor(cfg config.Config, typ string) (*api.Client, *api.ReportService, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "target", "target-harian":
		return serviceForCategory(cfg, "target")
	case "medsos", "media-sosial":
		return serviceForCategory(cfg, "media-sosial")
	case "poskas":
		return serviceForCategory(cfg, "poskas")
	default:
		return nil, nil, fmt.Errorf("unknown report type %q (want target, medsos or poskas)", typ)
	}
}

func serviceForCategory(cfg config.Config, category string) (*api.Client, *api.ReportService, error) {
	client := api.NewClient(cfg.APIBaseURL, cfg.Token, cfg.HTTPTimeout)
	switch category {
	case "target":
		return client, client.TargetHarian(), nil
	case "media-sosial":
		return client, client.MediaSosial(), nil
	case "poskas":
		return client, client.Poskas(), nil
	default:
		return nil, nil, fmt.Errorf("unknown category %q", category)
	}
}

func parseLogLevel(raw string) slog.Leveler {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}
	return level
}
