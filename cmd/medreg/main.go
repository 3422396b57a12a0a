package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/adapter"
	"github.com/fwojciec/medreg/apify"
	"github.com/fwojciec/medreg/crawl"
	"github.com/fwojciec/medreg/etree"
	"github.com/fwojciec/medreg/fs"
	"github.com/fwojciec/medreg/htmltomarkdown"
	medhttp "github.com/fwojciec/medreg/http"
	"github.com/fwojciec/medreg/htmlquery"
	"github.com/fwojciec/medreg/readability"
	"github.com/fwojciec/medreg/rod"
	medslog "github.com/fwojciec/medreg/slog"
	"github.com/fwojciec/medreg/sqlite"
	"github.com/fwojciec/medreg/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened only for --store=sqlite.
	DB *sqlite.DB

	// Overrides for end-to-end testing. Nil values are wired from flags.
	Fetcher medreg.Fetcher
	Store   medreg.DatasetStore
	Input   medreg.InputSource
	Records medreg.RecordReader
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("medreg"),
		kong.Description("Harvest physician directories of Hamburg healthcare institutions"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'medreg --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger, err = NewLogger(stderr, cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}
	deps.Adapters, err = adapter.NewDefaultRegistry(deps.Logger, adapter.Parsers{
		HTML:    htmlquery.NewParser(),
		Sitemap: etree.NewSitemapParser(),
	})
	if err != nil {
		return err
	}

	if strings.HasPrefix(kongCtx.Command(), "crawl") {
		if err := m.wireCrawl(ctx, &cli.Crawl, deps); err != nil {
			return err
		}
		defer m.Close()
		defer deps.Fetcher.Close()
	}
	if strings.HasPrefix(kongCtx.Command(), "records") {
		if err := m.wireRecords(&cli.Records, deps); err != nil {
			return err
		}
		defer m.Close()
	}

	return kongCtx.Run(deps)
}

// wireRecords opens the local store the records command reads.
func (m *Main) wireRecords(c *RecordsCmd, deps *Dependencies) error {
	if m.Records != nil {
		deps.Records = m.Records
		return nil
	}
	if c.Store == "sqlite" {
		m.DB = sqlite.NewDB(c.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Set MEDREG_DB to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", c.DB, err)
		}
		deps.Records = sqlite.NewRecordStore(m.DB)
		return nil
	}
	deps.Records = fs.NewDatasetStore(c.StorageDir, fs.DefaultName)
	return nil
}

// wireCrawl builds the fetcher, store, input source and enrichers of the
// crawl command.
func (m *Main) wireCrawl(ctx context.Context, c *CrawlCmd, deps *Dependencies) error {
	logger := deps.Logger

	fetcher := m.Fetcher
	if fetcher == nil {
		if c.Browser {
			f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout), rod.WithRecycleAfter(c.Recycle))
			if err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = f
		} else {
			fetcher = medhttp.NewFetcher(medhttp.WithTimeout(c.Timeout), medhttp.WithUserAgent(adapter.UserAgent))
		}
	}
	deps.Fetcher = medslog.NewLoggingFetcher(fetcher, logger)

	client := apify.NewClient(
		apify.WithBaseURL(c.Apify.BaseURL),
		apify.WithToken(c.Apify.Token),
		apify.WithHTTPClient(&http.Client{Timeout: apify.DefaultTimeout}),
	)

	store := m.Store
	if store == nil {
		switch c.storeKind() {
		case "apify":
			store = client.Dataset(c.Apify.DatasetID)
		case "sqlite":
			m.DB = sqlite.NewDB(c.DB)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Set MEDREG_DB to use a different database path")
				return fmt.Errorf("failed to open database at %q: %w", c.DB, err)
			}
			store = sqlite.NewRecordStore(m.DB)
		default:
			ds := fs.NewDatasetStore(c.StorageDir, fs.DefaultName)
			if c.Purge {
				if err := ds.Purge(); err != nil {
					return fmt.Errorf("failed to purge %s: %w", ds.Dir(), err)
				}
			}
			store = ds
		}
	}
	deps.Store = medslog.NewLoggingDatasetStore(store, logger)

	input := m.Input
	if input == nil {
		if c.Apify.AtHome {
			input = client.KeyValueStore(c.Apify.KeyValueStoreID)
		} else {
			input = fs.NewInputSource(c.StorageDir)
		}
	}
	deps.Input = medslog.NewLoggingInputSource(input, logger)

	if c.LLMContent {
		var extractor medreg.Extractor = trafilatura.NewExtractor()
		if c.Extractor == "readability" {
			extractor = readability.NewExtractor()
		}
		deps.Enrichers = append(deps.Enrichers, &crawl.ContentEnricher{
			Extractor: extractor,
			Converter: htmltomarkdown.NewConverter(),
		})
	}

	logger.Debug("crawl wired",
		"browser", c.Browser,
		"store", c.storeKind(),
		"at_home", c.Apify.AtHome,
		"llm_content", c.LLMContent,
	)
	return nil
}

// NewLogger creates the process logger writing to w.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, medreg.Errorf(medreg.EINVALID, "invalid log format %q", format)
}
