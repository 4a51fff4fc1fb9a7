package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"freshkb-cli/internal/config"
	"freshkb-cli/internal/db"
	"freshkb-cli/internal/export"
	"freshkb-cli/internal/extract"
	"freshkb-cli/internal/freshservice"
	"freshkb-cli/internal/logging"
	"freshkb-cli/internal/materialize"
	"freshkb-cli/internal/mcp"
	"freshkb-cli/internal/render"
	"freshkb-cli/internal/search"
	"freshkb-cli/internal/version"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        config.Config
)

func initConfig() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func main() {
	cobra.OnInitialize(initConfig)

	var rootCmd = &cobra.Command{
		Use:   "freshkb-cli",
		Short: "A CLI tool for extracting Freshservice knowledge bases",
		Long:  "Extract, export, and search the articles of a Freshservice knowledge base",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	var (
		runDomain        string
		runAPIKey        string
		runBaseDir       string
		runExportName    string
		runLogFile       string
		runLogLevel      string
		runCatalog       string
		runNoPDF         bool
		runNoHTML        bool
		runNoText        bool
		runNoMarkdown    bool
		runNoAttachments bool
	)

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a full knowledge-base extraction",
		Long:  "Walk every category, folder, and article, export the article list in bulk, and download each article's content and attachments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runDomain != "" {
				cfg.Domain = runDomain
			}
			if runAPIKey != "" {
				cfg.APIKey = runAPIKey
			}
			if runBaseDir != "" {
				cfg.BaseDir = runBaseDir
			}
			if runExportName != "" {
				cfg.ExportName = runExportName
			}
			if runLogFile != "" {
				cfg.LogFile = runLogFile
			}
			if runLogLevel != "" {
				cfg.LogLevel = runLogLevel
			}
			if runCatalog != "" {
				cfg.Catalog = runCatalog
			}
			if runNoPDF {
				cfg.SavePDF = false
			}
			if runNoHTML {
				cfg.SaveHTML = false
			}
			if runNoText {
				cfg.SaveText = false
			}
			if runNoMarkdown {
				cfg.SaveMarkdown = false
			}
			if runNoAttachments {
				cfg.Attachments = false
			}
			return runExtraction()
		},
	}

	runCmd.Flags().StringVar(&runDomain, "domain", "", "Freshservice domain (the {domain} in {domain}.freshservice.com)")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "Freshservice API key")
	runCmd.Flags().StringVar(&runBaseDir, "dir", "", "Base download directory")
	runCmd.Flags().StringVar(&runExportName, "name", "", "Custom name for the bulk export files")
	runCmd.Flags().StringVar(&runLogFile, "log", "", "Path to log file")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	runCmd.Flags().StringVar(&runCatalog, "catalog", "", "Record the run into this SQLite catalog")
	runCmd.Flags().BoolVar(&runNoPDF, "no-pdf", false, "Skip PDF rendering")
	runCmd.Flags().BoolVar(&runNoHTML, "no-html", false, "Skip HTML files")
	runCmd.Flags().BoolVar(&runNoText, "no-text", false, "Skip plain-text files")
	runCmd.Flags().BoolVar(&runNoMarkdown, "no-markdown", false, "Skip markdown files")
	runCmd.Flags().BoolVar(&runNoAttachments, "no-attachments", false, "Skip attachment downloads")

	var (
		checkDomain string
		checkAPIKey string
	)

	var checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify API credentials and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkDomain != "" {
				cfg.Domain = checkDomain
			}
			if checkAPIKey != "" {
				cfg.APIKey = checkAPIKey
			}
			return runCheck()
		},
	}

	checkCmd.Flags().StringVar(&checkDomain, "domain", "", "Freshservice domain")
	checkCmd.Flags().StringVar(&checkAPIKey, "api-key", "", "Freshservice API key")

	var (
		searchCatalog string
		searchField   string
		searchLimit   int
		searchJSON    bool
	)

	var searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Search a previously extracted catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], searchCatalog, searchField, searchLimit, searchJSON)
		},
	}

	searchCmd.Flags().StringVar(&searchCatalog, "catalog", "freshkb.sqlite", "Path to SQLite catalog file")
	searchCmd.Flags().StringVar(&searchField, "field", "", "Search specific field: title, content, tags, category, folder")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output results as JSON")

	var (
		statsCatalog string
		statsJSON    bool
	)

	var statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(statsCatalog, statsJSON)
		},
	}

	statsCmd.Flags().StringVar(&statsCatalog, "catalog", "freshkb.sqlite", "Path to SQLite catalog file")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")

	var mcpCatalog string

	var mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP (Model Context Protocol) server",
		Long:  "Start an MCP server that exposes the extracted catalog's search and browse functionality to MCP clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := db.Open(mcpCatalog)
			if err != nil {
				return err
			}
			defer catalog.Close()
			return mcp.NewServer(catalog).Start()
		},
	}

	mcpCmd.Flags().StringVar(&mcpCatalog, "catalog", "freshkb.sqlite", "Path to SQLite catalog file")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("freshkb-cli " + version.GetFullVersion())
		},
	}

	rootCmd.AddCommand(runCmd, checkCmd, searchCmd, statsCmd, mcpCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runExtraction() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLogger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLogger()

	client := freshservice.NewClient(cfg.Domain, cfg.ResolveAPIKey(), cfg.Timeout(), logger)

	logger.Infof("Validating connection to %s.freshservice.com", cfg.Domain)
	if err := client.ValidateConnection(); err != nil {
		color.Red("Connection check failed: %v", err)
		return err
	}
	color.Green("Connected to %s.freshservice.com", cfg.Domain)

	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	var renderer render.Renderer
	if cfg.SavePDF {
		wk, err := render.NewWKHTMLRenderer()
		if err != nil {
			logger.Warnf("PDF rendering unavailable: %v", err)
			color.Yellow("wkhtmltopdf not found, PDFs will be skipped")
		} else {
			renderer = wk
		}
	}

	mat := materialize.New(client, renderer, cfg.Domain, cfg.BaseDir, logger)
	exporter := export.New(cfg.BaseDir, logger)
	extractor := extract.New(client, mat, exporter, extract.NewDisplay(os.Stdout), logger)

	if cfg.Catalog != "" {
		catalog, err := db.Open(cfg.Catalog)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer catalog.Close()
		extractor.WithRecorder(catalog)
	}

	summary, _, _ := extractor.Run(extract.Options{
		BaseDir:             cfg.BaseDir,
		ExportName:          cfg.ExportName,
		DownloadAttachments: cfg.Attachments,
		Formats: materialize.Options{
			SavePDF:      cfg.SavePDF && renderer != nil,
			SaveHTML:     cfg.SaveHTML,
			SaveText:     cfg.SaveText,
			SaveMarkdown: cfg.SaveMarkdown,
		},
	})

	if summary.TotalArticles == 0 {
		color.Yellow("No articles found.")
		return nil
	}

	color.Green("Downloaded %d/%d articles (%d/%d attachments) to %s",
		summary.SuccessfulArticles, summary.TotalArticles,
		summary.SuccessfulAttachments, summary.TotalAttachments,
		summary.DownloadDirectory)
	return nil
}

func runCheck() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := freshservice.NewClient(cfg.Domain, cfg.ResolveAPIKey(), cfg.Timeout(), logging.Nop())
	if err := client.ValidateConnection(); err != nil {
		color.Red("✗ %v", err)
		return err
	}

	color.Green("✓ Connected to %s.freshservice.com", cfg.Domain)
	return nil
}

func runSearch(query, catalogPath, field string, limit int, jsonOutput bool) error {
	catalog, err := db.Open(catalogPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	return search.New(catalog, os.Stdout).Run(search.Options{
		Query:      query,
		Field:      field,
		Limit:      limit,
		JSONOutput: jsonOutput,
	})
}

func runStats(catalogPath string, jsonOutput bool) error {
	catalog, err := db.Open(catalogPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	stats, err := catalog.Stats()
	if err != nil {
		return err
	}
	breakdown, err := catalog.CategoryBreakdown()
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			db.Stats
			Breakdown []db.CategoryStat `json:"by_category"`
		}{stats, breakdown})
	}

	fmt.Printf("Categories:              %d\n", stats.Categories)
	fmt.Printf("Folders:                 %d\n", stats.Folders)
	fmt.Printf("Articles:                %d\n", stats.Articles)
	fmt.Printf("  Published:             %d\n", stats.PublishedArticles)
	fmt.Printf("  Draft:                 %d\n", stats.DraftArticles)
	fmt.Printf("Successfully downloaded: %d\n", stats.SuccessfulArticles)
	fmt.Printf("Attachments:             %d/%d downloaded\n", stats.AttachmentsDownloaded, stats.AttachmentsFound)
	fmt.Printf("Extraction runs:         %d\n", stats.Runs)

	if len(breakdown) > 0 {
		fmt.Println("\nBy category:")
		for _, row := range breakdown {
			name := fmt.Sprintf("category %d", row.CategoryID)
			if row.Name != nil && *row.Name != "" {
				name = *row.Name
			}
			fmt.Printf("  %-30s %d articles, %d downloaded\n", name, row.Articles, row.Downloaded)
		}
	}
	return nil
}
