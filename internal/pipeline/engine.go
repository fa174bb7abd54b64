package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"olwlg-nametags/internal/models"
	"olwlg-nametags/internal/olwlg"
)

// LabelRenderer is the rendering stage as seen by the engine.
type LabelRenderer interface {
	Render(tradeID int, tags []models.Nametag, preamble []string) (string, error)
}

// Resolver is the enrichment stage as seen by the engine.
type Resolver interface {
	Resolve(ctx context.Context, records []models.TradeRecord) ([]models.Nametag, error)
}

// Options carries the per-invocation switches that alter the pipeline.
type Options struct {
	// NoLabels stops the run after parsing; nothing is resolved or rendered.
	NoLabels bool
	// RandomTraders logs this many randomly sampled trader usernames,
	// for door-prize draws at the meetup. Zero disables the sample.
	RandomTraders int
}

// Engine runs the fetch, parse, resolve, render pipeline for one trade.
// Each stage runs exactly once; the first error is terminal for the run.
type Engine struct {
	logger   *zap.Logger
	fetcher  olwlg.ClientInterface
	resolver Resolver
	renderer LabelRenderer
	opts     Options
}

// NewEngine creates a new pipeline engine.
func NewEngine(logger *zap.Logger, fetcher olwlg.ClientInterface, resolver Resolver, renderer LabelRenderer, opts Options) *Engine {
	return &Engine{
		logger:   logger,
		fetcher:  fetcher,
		resolver: resolver,
		renderer: renderer,
		opts:     opts,
	}
}

// Run executes the pipeline for a trade id and returns the path of the
// written PDF, or an empty path when the run stops after parsing.
func (e *Engine) Run(ctx context.Context, tradeID int) (string, error) {
	results, err := e.fetcher.FetchResults(ctx, tradeID)
	if err != nil {
		return "", fmt.Errorf("results fetch: %w", err)
	}

	records, preamble, err := olwlg.ParseResults(results)
	if err != nil {
		return "", fmt.Errorf("results parse for trade %d: %w", tradeID, err)
	}

	traders := olwlg.Traders(records)
	e.logger.Info("Parsed official results",
		zap.Int("trade_id", tradeID),
		zap.Int("records", len(records)),
		zap.Int("traders", len(traders)),
		zap.Int("preamble_lines", len(preamble)),
	)

	if n := e.opts.RandomTraders; n > 0 {
		e.logger.Info("Randomly selected traders", zap.Strings("traders", sample(traders, n)))
	}

	if e.opts.NoLabels {
		e.logger.Info("Skipping label generation")
		return "", nil
	}

	tags, err := e.resolver.Resolve(ctx, records)
	if err != nil {
		return "", fmt.Errorf("metadata resolve for trade %d: %w", tradeID, err)
	}

	path, err := e.renderer.Render(tradeID, tags, preamble)
	if err != nil {
		return "", fmt.Errorf("label render for trade %d: %w", tradeID, err)
	}

	return path, nil
}

// sample returns up to n usernames drawn without replacement.
func sample(traders []string, n int) []string {
	if n >= len(traders) {
		return traders
	}
	picked := make([]string, len(traders))
	copy(picked, traders)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}
