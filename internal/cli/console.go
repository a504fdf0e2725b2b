package cli

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"

	"recolector/internal/notify"
	"recolector/internal/utils"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitNoAuth  = 2
)

var severityColor = map[notify.Severity]*color.Color{
	notify.Success: color.New(color.FgGreen, color.Bold),
	notify.Error:   color.New(color.FgRed, color.Bold),
	notify.Warning: color.New(color.FgYellow),
	notify.Info:    color.New(color.FgCyan),
}

var severityMark = map[notify.Severity]string{
	notify.Success: "✔",
	notify.Error:   "✖",
	notify.Warning: "!",
	notify.Info:    "i",
}

// Console prints notifications as they are raised and keeps them in the
// queue. It remembers the first error so the command can exit non-zero.
type Console struct {
	out   io.Writer
	queue *notify.Queue

	mu       sync.Mutex
	firstErr string
}

func NewConsole(out io.Writer, queue *notify.Queue) *Console {
	return &Console{out: out, queue: queue}
}

func (c *Console) Push(message string, severity notify.Severity) string {
	id := c.queue.Push(message, severity)

	c.mu.Lock()
	defer c.mu.Unlock()
	if severity == notify.Error && c.firstErr == "" {
		c.firstErr = message
	}
	col, ok := severityColor[severity]
	if !ok {
		col = color.New(color.Reset)
	}
	_, _ = col.Fprintf(c.out, "%s %s\n", severityMark[severity], message)
	return id
}

// Err returns the first error raised, as a reported CustomError.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstErr == "" {
		return nil
	}
	return utils.New(ExitFailure, c.firstErr)
}

// table writes aligned rows to out.
func table(out io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func kv(out io.Writer, pairs ...string) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], pairs[i+1])
	}
	_ = tw.Flush()
}

func pts(v float64) string {
	return fmt.Sprintf("%.0f pts", v)
}

func kg(v float64) string {
	return fmt.Sprintf("%.2f kg", v)
}
