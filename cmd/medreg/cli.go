package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/medreg"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Adapters  medreg.AdapterRegistry
	Fetcher   medreg.Fetcher
	Store     medreg.DatasetStore
	Input     medreg.InputSource
	Enrichers []medreg.Enricher
	Records   medreg.RecordReader
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel  string `default:"info" enum:"debug,info,warn,error" env:"MEDREG_LOG_LEVEL" help:"Log level"`
	LogFormat string `default:"text" enum:"text,json" env:"MEDREG_LOG_FORMAT" help:"Log format"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl physician directories and push records to the dataset"`
	List    ListCmd    `cmd:"" help:"List available spiders"`
	Records RecordsCmd `cmd:"" help:"Print records stored by earlier local crawls"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Spiders    []string `arg:"" optional:"" help:"Spiders to run in order (default: actor input, then --spider-name)"`
	All        bool     `help:"Run every registered spider"`
	SpiderName string   `env:"APIFY_INPUT_SPIDER_NAME" default:"uke" help:"Spider used when neither arguments nor input select one"`

	MaxItems    int           `help:"Stop a spider after this many records (0: unlimited)"`
	MaxPages    int           `help:"Stop scheduling after this many requests (0: unlimited)"`
	MaxDuration time.Duration `help:"Stop a spider after this long (0: unlimited)"`

	Browser bool          `help:"Fetch pages with headless Chrome"`
	Recycle int           `name:"browser-recycle-after" default:"75" help:"Restart Chrome after this many pages"`
	Timeout time.Duration `default:"180s" help:"Fetch timeout per page"`

	LLMContent bool   `name:"llm-content" help:"Fill llm_content with the main page content as Markdown"`
	Extractor  string `default:"trafilatura" enum:"trafilatura,readability" help:"Main content extractor for --llm-content"`

	Store        string        `default:"auto" enum:"auto,apify,fs,sqlite" help:"Dataset store (auto: apify on the platform, fs otherwise)"`
	DB           string        `name:"db" env:"MEDREG_DB" default:"medreg.db" help:"SQLite database path for --store=sqlite"`
	StorageDir   string        `env:"APIFY_LOCAL_STORAGE_DIR" default:"./storage" help:"Local storage directory"`
	Purge        bool          `help:"Remove local dataset items before crawling"`
	FlushTimeout time.Duration `default:"2h" help:"Maximum time a dataset flush may take"`

	Apify ApifyFlags `embed:"" prefix:"apify-"`
}

// ApifyFlags configure the Apify platform client.
type ApifyFlags struct {
	Token           string `env:"APIFY_TOKEN" help:"API token"`
	BaseURL         string `name:"api-base-url" env:"APIFY_API_BASE_URL" default:"https://api.apify.com" help:"API base URL"`
	DatasetID       string `env:"APIFY_DEFAULT_DATASET_ID" default:"default" help:"Dataset receiving records"`
	KeyValueStoreID string `env:"APIFY_DEFAULT_KEY_VALUE_STORE_ID" default:"default" help:"Key-value store holding the actor input"`
	AtHome          bool   `env:"APIFY_IS_AT_HOME" help:"Running on the Apify platform"`
}

// storeKind resolves "auto" to a concrete store.
func (c *CrawlCmd) storeKind() string {
	if c.Store != "auto" && c.Store != "" {
		return c.Store
	}
	if c.Apify.AtHome {
		return "apify"
	}
	return "fs"
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RecordsCmd is the "records" subcommand.
type RecordsCmd struct {
	Spider string `help:"Only records of this spider"`
	URL    string `name:"url" help:"Only records of this profile URL"`
	Limit  int    `help:"Print at most this many records (0: all)"`
	Offset int    `help:"Skip this many matching records"`
	Count  bool   `help:"Print the number of records of --spider instead"`

	Store      string `default:"fs" enum:"fs,sqlite" help:"Local store to read"`
	DB         string `name:"db" env:"MEDREG_DB" default:"medreg.db" help:"SQLite database path for --store=sqlite"`
	StorageDir string `env:"APIFY_LOCAL_STORAGE_DIR" default:"./storage" help:"Local storage directory"`
}
