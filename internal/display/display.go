// Package display renders match results as plain text tables.
package display

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const (
	lineWidth      = 80
	errorMaxLength = 30

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

type Printer struct {
	out   io.Writer
	color bool
}

// New colours output only when out is a terminal.
func New(out io.Writer) *Printer {
	color := false
	if file, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(file.Fd()))
	}

	return &Printer{out: out, color: color}
}

func (that *Printer) paint(color, text string) string {
	if !that.color {
		return text
	}

	return color + text + colorReset
}

// Match prints the summary, the turn table and the per-player table of one match.
func (that *Printer) Match(game string, result entity.Result) {
	fmt.Fprintf(that.out, "\n%s\n", strings.Repeat("=", lineWidth))
	fmt.Fprintf(that.out, "%s\n", that.paint(colorBold, "GAME RESULTS: "+game))
	fmt.Fprintf(that.out, "%s\n", strings.Repeat("=", lineWidth))

	that.summary(result)

	if result.Error == "" {
		that.turns(result.Stats)
		that.players(result.Stats)
	}

	fmt.Fprintf(that.out, "\n%s\n", strings.Repeat("=", lineWidth))
}

// Banner prints lines between two rules.
func (that *Printer) Banner(lines ...string) {
	fmt.Fprintf(that.out, "\n%s\n", strings.Repeat("=", lineWidth))
	for _, line := range lines {
		fmt.Fprintln(that.out, line)
	}
	fmt.Fprintln(that.out, strings.Repeat("=", lineWidth))
}

func (that *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(that.out, format, args...)
}

// Outcome is a one-word description of a result.
func Outcome(result entity.Result) string {
	switch {
	case result.Error != "":
		return "Error: " + result.Error
	case result.Winner != "":
		return "Winner: " + result.Winner
	case result.Stats.Draw:
		return "Draw"
	default:
		return "Incomplete"
	}
}

// Line prints a single-line summary, used for repeated batch cases.
func (that *Printer) Line(game string, repetition int, result entity.Result) {
	fmt.Fprintf(that.out, "%s #%d: %s (turns=%d, invalid=%d, %s)\n",
		game, repetition, that.outcome(result), result.Stats.TotalTurns(), result.Stats.InvalidMoves,
		seconds(result.Stats.TotalDuration))
}

func (that *Printer) outcome(result entity.Result) string {
	text := Outcome(result)

	switch {
	case result.Error != "":
		return that.paint(colorRed, text)
	case result.Winner != "":
		return that.paint(colorGreen, text)
	default:
		return that.paint(colorYellow, text)
	}
}

func (that *Printer) section(title string) {
	fmt.Fprintf(that.out, "\n%s\n%s\n", that.paint(colorBold, title), strings.Repeat("-", lineWidth))
}

func (that *Printer) summary(result entity.Result) {
	that.section("GAME SUMMARY")

	fmt.Fprintf(that.out, "Result: %s\n", that.outcome(result))
	if result.Error != "" {
		return
	}

	stats := result.Stats
	fmt.Fprintf(that.out, "Total Duration: %s\n", seconds(stats.TotalDuration))
	fmt.Fprintf(that.out, "Total Turns: %d\n", stats.TotalTurns())
	fmt.Fprintf(that.out, "Average Turn Time: %s\n", millis(stats.AverageTurnTime()))
	fmt.Fprintf(that.out, "Invalid Moves: %d\n", stats.InvalidMoves)
}

func (that *Printer) turns(stats entity.GameStatistics) {
	if len(stats.Turns) == 0 {
		return
	}

	that.section("TURN-BY-TURN STATISTICS")

	w := tabwriter.NewWriter(that.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Turn\tPlayer\tMove\tTime (ms)\tValid\tError")

	for _, turn := range stats.Turns {
		valid := "✓"
		if !turn.MoveValid {
			valid = "✗"
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			turn.TurnNumber, turn.Player, entity.FormatMove(turn.MoveMade),
			turn.TimeTaken.Milliseconds(), valid, Truncate(turn.ErrorMessage, errorMaxLength))
	}

	_ = w.Flush()
}

func (that *Printer) players(stats entity.GameStatistics) {
	summaries := stats.PlayerSummaries()
	if len(summaries) == 0 {
		return
	}

	slices.SortFunc(summaries, func(a, b entity.PlayerSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	that.section("PLAYER STATISTICS")

	w := tabwriter.NewWriter(that.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Player\tTotal Turns\tValid Moves\tInvalid Moves\tTotal Time (ms)\tAvg Time (ms)")

	for _, summary := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\n",
			summary.Name, summary.TotalTurns, summary.ValidMoves, summary.InvalidMoves,
			summary.TotalTime.Milliseconds(), float64(summary.AverageTime().Microseconds())/1000)
	}

	_ = w.Flush()
}

// Truncate keeps the first n runes of s. An empty s renders as "-".
func Truncate(s string, n int) string {
	if s == "" {
		return "-"
	}

	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}
