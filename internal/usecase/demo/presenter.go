package demo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

// DropMode controls teardown behavior.
type DropMode string

const (
	// DropAsk prompts interactively; any non-"yes" answer retains the collection.
	DropAsk DropMode = "ask"
	// DropYes drops without prompting.
	DropYes DropMode = "yes"
	// DropNo retains without prompting.
	DropNo DropMode = "no"
)

// ParseDropMode validates a -drop flag value.
func ParseDropMode(s string) (DropMode, error) {
	switch DropMode(s) {
	case DropAsk, DropYes, DropNo:
		return DropMode(s), nil
	}
	return "", fmt.Errorf("drop mode must be ask, yes or no, got %q: %w", s, domain.ErrConfiguration)
}

// Presenter writes the human-facing result block. Progress narration goes
// through the structured logger; this is the one place that prints.
type Presenter struct {
	out io.Writer
}

// NewPresenter creates a presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// Present renders the ranked results with fused scores and, when available,
// the per-pipeline contribution breakdown.
func (p *Presenter) Present(query string, results []domain.HybridResult) {
	fmt.Fprintf(p.out, "\nFused results for %q (ranked by weighted RRF score):\n", query)
	if len(results) == 0 {
		fmt.Fprintln(p.out, "  (no results)")
		return
	}

	for i, res := range results {
		fmt.Fprintf(p.out, "%2d. score %.4f | %s\n", i+1, res.Score, res.Title)
		fmt.Fprintf(p.out, "    %s\n", res.Plot)
		for _, c := range res.Contributions {
			fmt.Fprintf(p.out, "      %s: rank %d, weight %.2f -> %.4f\n",
				c.Pipeline, c.Rank, c.Weight, domain.RRFScore(c.Weight, c.Rank))
		}
	}
}

// Teardown optionally drops the seeded collection, then leaves connection
// release to the caller. In ask mode any answer other than "yes" retains.
func Teardown(
	ctx context.Context,
	mode DropMode,
	in io.Reader,
	out io.Writer,
	collection string,
	dropper Dropper,
	logger *zap.Logger,
) error {
	drop := false
	switch mode {
	case DropYes:
		drop = true
	case DropNo:
		drop = false
	case DropAsk:
		fmt.Fprintf(out, "Drop the collection %q? (yes/no): ", collection)
		reader := bufio.NewReader(in)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			// no input available (e.g. non-interactive run): retain
			logger.Info("No teardown answer, retaining collection")
			return nil
		}
		drop = strings.EqualFold(strings.TrimSpace(answer), "yes")
	}

	if !drop {
		logger.Info("Retaining collection", zap.String("collection", collection))
		return nil
	}

	if err := dropper.DropCollection(ctx); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	logger.Info("Collection dropped", zap.String("collection", collection))
	fmt.Fprintf(out, "Collection %q dropped.\n", collection)
	return nil
}
