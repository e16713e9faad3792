package main

// Extract and optionally summarize PDFs from the command line:
//   go run ./cmd/pdftext -file deck.pdf -preview
//   go run ./cmd/pdftext -summarize a.pdf b.pdf
//   go run ./cmd/pdftext -v deck.pdf   (adds the pdfcpu structure report)

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"slidesage-backend/internal/documents"
	"slidesage-backend/internal/extract"
	"slidesage-backend/internal/llm"
	"slidesage-backend/internal/llm/gemini"
	"slidesage-backend/internal/shared/config"
	"slidesage-backend/internal/shared/telemetry"
)

const cliUser = "cli"

type options struct {
	files     []string
	summarize bool
	preview   bool
	asJSON    bool
	verbose   bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "pdftext: %v\n", err)
		os.Exit(2)
	}
	if !opts.verbose {
		restore := telemetry.SetOutput(io.Discard)
		defer restore()
	}

	cfg := config.Load()
	summarizer, err := newSummarizer(cfg, opts.summarize)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "pdftext: %v\n", err)
		os.Exit(1)
	}
	svc := documents.NewService(documents.NewMemoryRepo(), extract.NewPDFExtractor(), summarizer, nil)

	results, failed := run(context.Background(), svc, opts, os.Stderr)
	if err := render(os.Stdout, results, opts); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "pdftext: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("pdftext", flag.ContinueOnError)
	var opts options
	var file string
	fs.StringVar(&file, "file", "", "PDF file to process")
	fs.BoolVar(&opts.summarize, "summarize", false, "generate a summary for each document")
	fs.BoolVar(&opts.preview, "preview", false, "print the preview instead of the full text")
	fs.BoolVar(&opts.asJSON, "json", false, "print the detail projection as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "emit structured logs and a pdfcpu structure report")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if file != "" {
		opts.files = append(opts.files, file)
	}
	opts.files = append(opts.files, fs.Args()...)
	if len(opts.files) == 0 {
		return options{}, fmt.Errorf("no input files; use -file or pass paths as arguments")
	}
	return opts, nil
}

func newSummarizer(cfg config.Config, enabled bool) (llm.Summarizer, error) {
	if !enabled || cfg.Summarizer.APIKey == "" {
		return llm.PlaceholderClient{}, nil
	}
	return gemini.NewClient(gemini.Options{
		APIKey:     cfg.Summarizer.APIKey,
		Model:      cfg.Summarizer.Model,
		BaseURL:    cfg.Summarizer.BaseURL,
		Timeout:    cfg.Summarizer.Timeout,
		KeyInQuery: cfg.Summarizer.KeyInQuery,
	})
}

type result struct {
	Path    string           `json:"path"`
	Detail  documents.Detail `json:"detail"`
	Inspect *inspection      `json:"inspect,omitempty"`
	Text    string           `json:"-"`
	Err     string           `json:"error,omitempty"`
}

// inspection is the pdfcpu view of a file, reported with -v.
type inspection struct {
	PageCount int    `json:"pageCount"`
	Encrypted bool   `json:"encrypted"`
	Locked    bool   `json:"locked"`
	Err       string `json:"error,omitempty"`
}

func inspectFile(data []byte) *inspection {
	info, err := extract.Inspect(data)
	if err != nil {
		return &inspection{Err: err.Error()}
	}
	return &inspection{PageCount: info.PageCount, Encrypted: info.Encrypted, Locked: info.Locked}
}

// run processes every file, reporting progress on progress. It returns one
// result per input and the number of inputs that failed.
func run(ctx context.Context, svc *documents.Service, opts options, progress io.Writer) ([]result, int) {
	steps := len(opts.files)
	if opts.summarize {
		steps *= 2
	}
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	results := make([]result, 0, len(opts.files))
	failed := 0
	for _, path := range opts.files {
		res := processFile(ctx, svc, path, opts, func() { _ = bar.Add(1) })
		if res.Err != "" {
			failed++
		}
		results = append(results, res)
	}
	return results, failed
}

func processFile(ctx context.Context, svc *documents.Service, path string, opts options, step func()) result {
	res := result{Path: path}
	summarize := opts.summarize
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		step()
		if summarize {
			step()
		}
		return res
	}
	if opts.verbose {
		res.Inspect = inspectFile(data)
	}

	detail, err := svc.Ingest(ctx, documents.Upload{
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "application/pdf",
		FileName:    filepath.Base(path),
		UserID:      cliUser,
	})
	step()
	if err != nil {
		res.Err = err.Error()
		if summarize {
			step()
		}
		return res
	}
	res.Detail = detail

	if doc, err := svc.Content(ctx, detail.ID, cliUser); err == nil && doc.ExtractedText != nil {
		res.Text = *doc.ExtractedText
	}

	if summarize {
		summarized, err := svc.Summarize(ctx, detail.ID, cliUser)
		step()
		if err != nil {
			res.Err = err.Error()
			return res
		}
		res.Detail = summarized
	}
	return res
}

func render(w io.Writer, results []result, opts options) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	heading := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	for _, res := range results {
		heading.Fprintf(w, "== %s\n", res.Path)
		if in := res.Inspect; in != nil {
			if in.Err != "" {
				warn.Fprintf(w, "pdfcpu: %s\n", in.Err)
			} else {
				fmt.Fprintf(w, "pdfcpu: pages: %d  encrypted: %t  locked: %t\n", in.PageCount, in.Encrypted, in.Locked)
			}
		}
		if res.Err != "" {
			bad.Fprintf(w, "error: %s\n\n", res.Err)
			continue
		}
		status := ok
		if res.Detail.TextStatus != documents.TextStatusReady {
			status = warn
		}
		status.Fprintf(w, "status: %s  pages: %d  chars: %d", res.Detail.TextStatus, res.Detail.PageCount, res.Detail.ExtractedChars)
		if res.Detail.Encrypted {
			warn.Fprint(w, "  encrypted")
		}
		fmt.Fprintln(w)

		body := res.Text
		if opts.preview {
			body = res.Detail.Preview
		}
		if body != "" {
			fmt.Fprintln(w, body)
		}

		if res.Detail.Summary != nil {
			label := ok
			if res.Detail.SummaryFailed {
				label = bad
			}
			label.Fprintln(w, "summary:")
			fmt.Fprintln(w, *res.Detail.Summary)
		}
		fmt.Fprintln(w)
	}
	return nil
}
