package display

import (
	"fmt"
	"strconv"
	"strings"
)

const columnWidth = 12

// Status carries the toggle states shown above the columns.
type Status struct {
	GeneratorRunning bool
	ConsumerRunning  bool
}

func onOff(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

// Render draws the three lists side by side, newest generated and consumed
// values at the bottom, followed by the key help and the status line.
// At most rows lines of values are drawn; rows <= 0 draws them all.
func Render(snap Snapshot, status Status, rows int) string {
	generated := tail(snap.Generated, rows)
	queue := tail(snap.Queue, rows)
	consumed := tail(snap.Consumed, rows)

	height := max(len(generated), len(queue), len(consumed))

	var out strings.Builder
	fmt.Fprintf(&out, "generator: %s   consumer: %s\n", onOff(status.GeneratorRunning), onOff(status.ConsumerRunning))
	writeRow(&out, "Generated", fmt.Sprintf("Queue %d/%d", len(snap.Queue), snap.Capacity), "Consumed")
	writeRow(&out, strings.Repeat("-", columnWidth), strings.Repeat("-", columnWidth), strings.Repeat("-", columnWidth))
	for i := 0; i < height; i++ {
		writeRow(&out, cell(generated, i), cell(queue, i), cell(consumed, i))
	}
	out.WriteString("\n")
	out.WriteString(snap.Stats.String())
	out.WriteString("\n[g] toggle generator  [c] toggle consumer  [q] quit\n")
	return out.String()
}

func writeRow(out *strings.Builder, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			out.WriteString(" | ")
		}
		fmt.Fprintf(out, "%-*s", columnWidth, c)
	}
	out.WriteString("\n")
}

func cell(values []int, i int) string {
	if i >= len(values) {
		return ""
	}
	return strconv.Itoa(values[i])
}

func tail(values []int, n int) []int {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
