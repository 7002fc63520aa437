package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/prodscope/prodscope/internal/client"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/export"
	"github.com/prodscope/prodscope/internal/intel"
	"github.com/prodscope/prodscope/internal/poller"
	"github.com/prodscope/prodscope/internal/preview"
	"github.com/prodscope/prodscope/internal/report"
	"github.com/prodscope/prodscope/internal/server"
	"github.com/prodscope/prodscope/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "prodscope",
	Short:   "Product intelligence pipeline dashboard",
	Long:    "ProdScope starts product intelligence pipeline runs, follows their progress, and turns the results into browsable reports and video scripts.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("prodscope", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/prodscope/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your pipeline service.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run history status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Service: %s\n\n", cfg.API.BaseURL)
		fmt.Println("Runs:")
		fmt.Printf("  Total: %d\n", stats.Total)
		fmt.Printf("  Completed: %d\n", stats.Completed)
		fmt.Printf("  Failed: %d\n", stats.Failed)
		fmt.Printf("  With scripts: %d\n", stats.WithScripts)
		return nil
	},
}

// --- run command ---

var runSkipApify bool

var runCmd = &cobra.Command{
	Use:   "run [product-url]",
	Short: "Start a pipeline run and follow it to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productURL := args[0]
		if err := client.ValidateURL(productURL); err != nil {
			return fmt.Errorf("enter a full product URL, including http:// or https://: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		api := newClient()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		title := fetchTitle(ctx, productURL)
		if title != "" {
			fmt.Printf("Product: %s\n", title)
		}

		runID, err := api.StartRun(ctx, productURL)
		if err != nil {
			return fmt.Errorf("starting run: %w", err)
		}
		fmt.Printf("Run started: %s\n\n", runID)

		opts := append(pollOptions(), poller.WithOnPhase(func(phase int) {
			fmt.Printf("Phase %d/%d: %s\n", phase+1, intel.TotalPhases, intel.PhaseName(phase))
		}))
		session := poller.New(runID, api.RunStatus, opts...)

		run, err := session.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nCancelled.")
				return nil
			}
			failed := &intel.Run{
				ID:           runID,
				ProductURL:   productURL,
				Status:       intel.StatusFailed,
				ErrorMessage: err.Error(),
			}
			var pf *poller.PipelineFailedError
			if errors.As(err, &pf) {
				failed.ErrorMessage = pf.Message
			}
			if dbErr := db.SaveRun(failed, title); dbErr != nil {
				log.Printf("Saving failed run: %v", dbErr)
			}
			return err
		}

		if err := db.SaveRun(run, title); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}

		fmt.Printf("\nCompleted in %s.\n", session.Elapsed().Round(time.Second))
		printRunSummary(run)
		fmt.Printf("\nExport the results with 'prodscope export %s' or browse them with 'prodscope serve'.\n", runID)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runSkipApify, "skip-apify", false, "Skip Apify-backed scraping stages")
}

// printRunSummary walks the phases of a completed run and prints what each
// one produced.
func printRunSummary(run *intel.Run) {
	for phase := 0; phase < intel.TotalPhases; phase++ {
		summary := intel.Summarize(run, phase)
		if summary == nil {
			continue
		}

		fmt.Printf("\n%s:\n", summary.Title)
		for _, line := range summary.Lines {
			fmt.Printf("  %s\n", line)
		}
		if len(summary.Keywords) > 0 {
			fmt.Printf("  Queries: %v\n", summary.Keywords)
		}
		if len(summary.Subreddits) > 0 {
			fmt.Printf("  Subreddits: %v\n", summary.Subreddits)
		}
		for _, src := range summary.Sources {
			fmt.Printf("  %s: %d\n", src.Name, src.Count)
		}
	}

	if run.Report != "" {
		hashtags := report.Hashtags(run.Report)
		competitors := report.Competitors(run.Report)
		fmt.Printf("\nReport: %d hashtags, %d competitors, %d content concepts\n",
			len(hashtags), len(competitors), len(report.Concepts(run.Report)))
	}
	if run.Scripts != "" {
		fmt.Printf("Scripts: %d\n", len(report.ParseScripts(run.Scripts)))
	}
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting dashboard at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		previews := preview.NewFetcher(cfg.APITimeout())
		return server.Serve(db, newClient(), previews, port, pollOptions()...)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs yet. Start one with: prodscope run <product-url>")
			return nil
		}

		for _, r := range runs {
			name := r.ProductTitle
			if name == "" {
				name = r.ProductURL
			}
			fmt.Printf("%s  %-9s  %s\n", r.StartedAt, r.Status, name)
			fmt.Printf("  id: %s\n", r.ID)
			if r.ErrorMessage != "" {
				fmt.Printf("  error: %s\n", r.ErrorMessage)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list")
}

// --- export command ---

var (
	exportDir  string
	exportHTML bool
)

var exportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Write a run's report and scripts to files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("run %s not found; see 'prodscope history'", args[0])
		}
		if err != nil {
			return err
		}
		if run.Report == "" && run.Scripts == "" {
			return fmt.Errorf("run %s has nothing to export", args[0])
		}

		now := time.Now()
		if run.Report != "" {
			if err := writeExport("report", "Product Intelligence Report", run.Report, now); err != nil {
				return err
			}
		}
		if run.Scripts != "" {
			if err := writeExport("scripts", "Video Scripts", run.Scripts, now); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory to write files into")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Also write print-ready HTML documents")
}

// writeExport writes the markdown byte for byte; HTML is derived from it.
func writeExport(prefix, title, content string, now time.Time) error {
	mdPath := filepath.Join(exportDir, export.Filename(prefix, "md", now))
	if err := export.WriteMarkdown(mdPath, content); err != nil {
		return fmt.Errorf("writing %s: %w", mdPath, err)
	}
	fmt.Printf("Wrote %s\n", mdPath)

	if !exportHTML {
		return nil
	}
	htmlPath := filepath.Join(exportDir, export.Filename(prefix, "html", now))
	if err := os.WriteFile(htmlPath, []byte(export.HTMLDocument(content, title)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", htmlPath, err)
	}
	fmt.Printf("Wrote %s\n", htmlPath)
	return nil
}

// --- helpers ---

func openDB() (*store.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.Open(filepath.Join(dataDir, "prodscope.db"))
}

func newClient() *client.Client {
	skipApify := cfg.API.SkipApify || runSkipApify
	return client.New(cfg.API.BaseURL, cfg.APITimeout(), skipApify, cfg.API.TunnelBypass)
}

func pollOptions() []poller.Option {
	return []poller.Option{
		poller.WithDelays(
			time.Duration(cfg.Poll.BaseDelaySeconds)*time.Second,
			time.Duration(cfg.Poll.StepSeconds)*time.Second,
			time.Duration(cfg.Poll.MaxDelaySeconds)*time.Second,
		),
		poller.WithBudget(time.Duration(cfg.Poll.BudgetMinutes) * time.Minute),
	}
}

// fetchTitle grabs the product page title for display and history. Failures
// are fine; the URL stands in.
func fetchTitle(ctx context.Context, productURL string) string {
	f := preview.NewFetcher(cfg.APITimeout())
	p, err := f.Fetch(ctx, productURL)
	if err != nil {
		return ""
	}
	return p.Title
}
