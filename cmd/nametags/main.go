package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"olwlg-nametags/internal/bgg"
	"olwlg-nametags/internal/config"
	"olwlg-nametags/internal/logger"
	"olwlg-nametags/internal/olwlg"
	"olwlg-nametags/internal/pipeline"
	"olwlg-nametags/internal/render"
)

var (
	configPath     string
	outputDir      string
	groups         int
	noLabels       bool
	printNamelists bool
	randomTraders  int
)

var rootCmd = &cobra.Command{
	Use:   "olwlg-nametags <trade_id> <token>",
	Short: "Generate printable nametag labels from OLWLG math-trade results",
	Long: `olwlg-nametags downloads the official OLWLG results for a math trade,
resolves member and game names through the BGG API, and writes a printable
label PDF (traders_<trade_id>.pdf) for the in-person meetup.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		tradeID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("trade_id must be a number, got %q", args[0])
		}
		token := args[1]
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}
		groupsSet := cmd.Flags().Changed("groups")
		if groupsSet && groups < 1 {
			return fmt.Errorf("--groups must be at least 1, got %d", groups)
		}
		return run(cmd.Context(), tradeID, token, groupsSet)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "./configs", "directory holding an optional config.yml")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory the PDF is written to")
	rootCmd.Flags().IntVar(&groups, "groups", 3, "number of alphabetical sections")
	rootCmd.Flags().BoolVar(&noLabels, "no-labels", false, "fetch and parse only, skip label generation")
	rootCmd.Flags().BoolVar(&printNamelists, "print-namelists", false, "include per-section checklist pages")
	rootCmd.Flags().IntVar(&randomTraders, "random-traders", 0, "log N randomly sampled traders")
}

func run(ctx context.Context, tradeID int, token string, groupsSet bool) error {
	// Load application configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	// The flag only overrides the config value when given explicitly, so a
	// config.yml labels.groups setting survives the plain two-arg run.
	if groupsSet {
		cfg.Labels.Groups = groups
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	defer log.Sync()

	fetcher := olwlg.NewClient(&cfg.OLWLG, log)
	resolver := bgg.NewResolver(bgg.NewClient(&cfg.BGG, token, log), log)
	renderer := render.NewRenderer(cfg.Labels, outputDir, printNamelists, log)

	engine := pipeline.NewEngine(log, fetcher, resolver, renderer, pipeline.Options{
		NoLabels:      noLabels,
		RandomTraders: randomTraders,
	})

	path, err := engine.Run(ctx, tradeID)
	if err != nil {
		log.Error("Run failed", zap.Int("trade_id", tradeID), zap.Error(err))
		return err
	}
	if path != "" {
		log.Info("Done", zap.String("pdf", path))
	}
	return nil
}

func main() {
	// Setup context so Ctrl-C aborts the blocking network calls cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
