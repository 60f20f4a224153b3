package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	dimWhite    = lipgloss.Color("#B0B0B0")

	titleStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Padding(0, 1)

	// rows whose delay hit the cap
	cappedStyle = cellStyle.
			Foreground(neonOrange)

	totalStyle = lipgloss.NewStyle().
			Foreground(neonYellow).
			Bold(true)
)

const maxDuration = time.Duration(1<<63 - 1)

// ScheduleRow is one line of a delay schedule
type ScheduleRow struct {
	Attempt int
	Delay   time.Duration
	// Elapsed is the cumulative wait up to and including this delay
	Elapsed time.Duration
	Capped  bool
}

// BuildSchedule turns consecutive delays into rows. Delays equal to
// maxDelay are flagged as capped.
func BuildSchedule(delays []time.Duration, maxDelay time.Duration) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(delays))
	var elapsed time.Duration
	for i, d := range delays {
		if d > maxDuration-elapsed {
			elapsed = maxDuration
		} else {
			elapsed += d
		}
		rows = append(rows, ScheduleRow{
			Attempt: i + 1,
			Delay:   d,
			Elapsed: elapsed,
			Capped:  maxDelay > 0 && d == maxDelay,
		})
	}
	return rows
}

// RenderSchedule renders rows as a bordered table under title
func RenderSchedule(title string, rows []ScheduleRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(neonMagenta)).
		Headers("AFTER ATTEMPT", "DELAY", "ELAPSED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row].Capped {
				return cappedStyle
			}
			return cellStyle
		})

	var total time.Duration
	for _, r := range rows {
		t.Row(strconv.Itoa(r.Attempt), FormatDelay(r.Delay), FormatDelay(r.Elapsed))
		total = r.Elapsed
	}

	footer := totalStyle.Render(fmt.Sprintf("%d waits, %s in total", len(rows), FormatDelay(total)))
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), t.Render(), footer)
}

// FormatDelay renders d, spelling out saturated delays
func FormatDelay(d time.Duration) string {
	if d == maxDuration {
		return "∞"
	}
	return d.String()
}
