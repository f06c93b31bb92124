//
// timing.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package enclave

import (
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/store"
)

// Timing records sort phase samples and renders a profiling report.
type Timing struct {
	Start   time.Time
	Samples []*Sample

	pending []*Sample
}

// Sample contains information about one timing sample.
type Sample struct {
	Label   string
	Start   time.Time
	End     time.Time
	Abs     time.Duration
	Cols    []string
	Samples []*Sample
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Sample adds a timing sample with label and data columns. Level
// durations recorded since the previous sample become its
// sub-samples.
func (t *Timing) Sample(label string, cols []string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label:   label,
		Start:   start,
		End:     time.Now(),
		Cols:    cols,
		Samples: t.pending,
	}
	t.pending = nil
	t.Samples = append(t.Samples, sample)
	return sample
}

// Level records the duration of one butterfly level.
func (t *Timing) Level(level int, duration time.Duration) {
	t.pending = append(t.pending, &Sample{
		Label: fmt.Sprintf("level %d", level),
		Abs:   duration,
	})
}

// Print prints the profiling report to standard output.
func (t *Timing) Print(stats store.IOStats) {
	if len(t.Samples) == 0 {
		return
	}

	reads := stats.Reads.Load()
	writes := stats.Writes.Load()

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Buckets").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)

		duration := sample.End.Sub(sample.Start)
		row.Column(duration.String())
		row.Column(fmt.Sprintf("%.2f%%",
			float64(duration)/float64(total)*100))

		for _, col := range sample.Cols {
			row.Column(col)
		}

		for idx, sub := range sample.Samples {
			row := tab.Row()

			var prefix string
			if idx+1 >= len(sample.Samples) {
				prefix = "╰╴"
			} else {
				prefix = "├╴"
			}

			row.Column(prefix + sub.Label).SetFormat(tabulate.FmtItalic)

			var d time.Duration
			if sub.Abs > 0 {
				d = sub.Abs
			} else {
				d = sub.End.Sub(sub.Start)
			}
			row.Column(d.String()).SetFormat(tabulate.FmtItalic)

			row.Column(
				fmt.Sprintf("%.2f%%", float64(d)/float64(duration)*100)).
				SetFormat(tabulate.FmtItalic)
		}
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", reads+writes)).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("├╴Reads").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(
		fmt.Sprintf("%.2f%%", float64(reads)/float64(reads+writes)*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(fmt.Sprintf("%d", reads)).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("╰╴Writes").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(
		fmt.Sprintf("%.2f%%", float64(writes)/float64(reads+writes)*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(fmt.Sprintf("%d", writes)).SetFormat(tabulate.FmtItalic)

	tab.Print(os.Stdout)
}
