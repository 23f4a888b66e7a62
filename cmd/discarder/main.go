package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/discarder/internal/cardtext"
	"github.com/lox/discarder/internal/config"
	"github.com/lox/discarder/internal/deck"
	"github.com/lox/discarder/internal/discarder"
	"github.com/lox/discarder/internal/tally"
)

type CLI struct {
	Hand          string `arg:"" help:"Cards already held, space separated (e.g. 'AS KH 5S')" optional:"true"`
	HandSize      int    `short:"n" help:"Target completed hand size" default:"8"`
	Iterations    uint64 `short:"i" help:"Monte Carlo iteration budget" default:"100000"`
	Seed          uint64 `help:"Random seed for reproducible results" default:"43"`
	Threshold     int    `help:"Enumeration-vs-sampling combination cutoff (0 = use config/default)"`
	Config        string `help:"Path to an optional HCL tunables file" default:"discarder.hcl"`
	Possibilities bool   `short:"p" help:"Also print the raw per-category counts"`
	Progress      bool   `help:"Show a live progress bar while sampling"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	hand, err := cardtext.ParseHand(cli.Hand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing hand: %v\n", err)
		kctx.Exit(1)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		kctx.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		kctx.Exit(1)
	}
	if level, err := log.ParseLevel(cfg.Engine.LogLevel); err == nil {
		log.SetLevel(level)
	}

	threshold := cli.Threshold
	if threshold == 0 {
		threshold = cfg.Engine.EnumerationThreshold
	}

	clock := quartz.NewReal()

	d := &discarder.Discarder{
		Deck:        deck.NewStandardDeck(),
		MaxHandSize: cli.HandSize,
		Seed:        cli.Seed,
		Threshold:   threshold,
		Threads:     cfg.Engine.Threads,
		ChunkSize:   cfg.Engine.ChunkSize,
		Clock:       clock,
	}

	log.Info("starting discard estimate", "hand", hand, "handSize", cli.HandSize, "iterations", cli.Iterations, "seed", cli.Seed, "threshold", threshold)

	startTime := clock.Now()
	chunk := runWithOptionalProgress(d, hand, cli.Iterations, cli.Progress)
	duration := clock.Now().Sub(startTime)

	displayResults(hand, chunk, cli.Possibilities, duration)
}

// runWithOptionalProgress drives the discarder either silently or
// through a Bubble Tea progress bar fed by the driver's progress
// callback over a channel, since the callback fires from a
// worker-supervisor goroutine rather than the UI goroutine.
func runWithOptionalProgress(d *discarder.Discarder, hand []deck.Card, iterations uint64, showProgress bool) tally.Chunk {
	if !showProgress {
		return d.Run(context.Background(), hand, iterations, nil)
	}

	updates := make(chan progressMsg, 1)
	done := make(chan struct{})
	program := tea.NewProgram(newProgressModel(updates, done))

	var chunk tally.Chunk
	go func() {
		chunk = d.Run(context.Background(), hand, iterations, func(p discarder.Progress) {
			select {
			case updates <- progressMsg(p):
			default:
			}
		})
		close(done)
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.Error("progress display failed", "err", err)
	}
	<-done
	return chunk
}

func displayResults(hand []deck.Card, chunk tally.Chunk, showPossibilities bool, duration time.Duration) {
	fmt.Printf("%s\n", headerStyle.Render("hand"))
	fmt.Printf("%s\n\n", handStyle.Render(formatCards(hand)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("category"), headerStyle.Render("probability"))

	for c := tally.HighCard; c <= tally.RoyalFlush; c++ {
		count := chunk.Tally[c]
		pct := float64(count) / float64(chunk.IterationsDone) * 100
		fmt.Fprintf(w, "%s\t%s\n",
			categoryStyle.Render(c.String()),
			percentStyle.Render(fmt.Sprintf("%.3f%%", pct)))
	}
	w.Flush()

	if showPossibilities {
		fmt.Println()
		fmt.Printf("raw counts: %v\n", chunk.Tally)
	}

	fmt.Println()
	fmt.Printf("%d iterations in %v\n", chunk.IterationsDone, duration.Truncate(time.Millisecond))
}

func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return "(empty)"
	}
	s := ""
	for i, c := range cards {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
