// Command play runs a rating duel in the terminal against the configured
// dataset.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/playperu/ratingquiz/internal/config"
	"github.com/playperu/ratingquiz/internal/dataset"
	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const help = `commands:
  1 | 2 | <name>    pick the higher rated option
  p <name>          pick by name, for names that clash with a command
  r                 restart
  d <difficulty>    change difficulty (e.g. "d Hard")
  n <rounds>        change number of rounds (5, 8, 10, 15, 20)
  q                 quit`

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	catalog, err := dataset.Open(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Debug("loaded dataset", "path", cfg.DatasetPath, "entities", catalog.Len())

	s, err := ratingquiz.NewSession("terminal", catalog.Entities(), ratingquiz.DefaultSettings(), ratingquiz.NewSampler(cfg.MaxDrawAttempts))
	if err != nil {
		return fmt.Errorf("starting game: %w", err)
	}

	p := &terminal{w: stdout}
	fmt.Fprintln(stdout, help)
	s.Render(p)

	lines := bufio.NewScanner(stdin)
	for ctx.Err() == nil && lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		if line == "q" {
			return nil
		}
		if err := handleLine(s, p, catalog.Entities(), line); err != nil {
			if !isUserError(err) {
				logger.Error("command failed", "input", line, "error", err)
			}
			fmt.Fprintf(stdout, "! %v\n", err)
		}
	}
	return lines.Err()
}

func handleLine(s *ratingquiz.Session, p *terminal, entities []ratingquiz.Entity, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "r":
		return s.OnRestart(p, entities)
	case "p":
		_, err := s.OnSubmit(p, arg)
		return err
	case "d":
		if err := s.OnDifficultyChanged(p, entities, arg); err != nil {
			return err
		}
	case "n":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %q", ratingquiz.ErrInvalidRounds, arg)
		}
		if err := s.OnRoundCountChanged(p, entities, n); err != nil {
			return err
		}
	case "1", "2":
		pair, ok := s.Pair()
		if !ok {
			return ratingquiz.ErrGameCompleted
		}
		choice := pair.A.Name
		if cmd == "2" {
			choice = pair.B.Name
		}
		_, err := s.OnSubmit(p, choice)
		return err
	default:
		_, err := s.OnSubmit(p, line)
		return err
	}

	if s.Pending() {
		fmt.Fprintln(p.w, "(new settings apply on restart)")
	}
	return nil
}

func isUserError(err error) bool {
	return errors.Is(err, ratingquiz.ErrInvalidChoice) ||
		errors.Is(err, ratingquiz.ErrGameCompleted) ||
		errors.Is(err, ratingquiz.ErrUnknownDifficulty) ||
		errors.Is(err, ratingquiz.ErrInvalidRounds) ||
		errors.Is(err, ratingquiz.ErrInsufficientPool)
}

// terminal prints screens as plain text.
type terminal struct {
	w io.Writer
}

func (t *terminal) RenderRound(round, total int, a, b string) {
	fmt.Fprintf(t.w, "\nRound %d of %d: which is rated higher?\n  1) %s\n  2) %s\n> ", round, total, a, b)
}

func (t *terminal) RenderFeedback(correct bool, correctName string) {
	if correct {
		fmt.Fprintf(t.w, "Correct! %s\n", correctName)
		return
	}
	fmt.Fprintf(t.w, "Wrong, it was %s\n", correctName)
}

func (t *terminal) RenderSummary(score, total int) {
	fmt.Fprintf(t.w, "\nFinal score: %d / %d\n(r to play again, q to quit)\n> ", score, total)
}
