// summary.go - Colored end-of-run summary.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/gurbanicard/gurbanicard/pkg/template"
)

// printSummary reports counts for a batch. Colors are dropped when stdout
// is not a terminal.
func printSummary(output string, res *template.BatchResult, elapsed time.Duration) {
	out := termenv.NewOutput(os.Stdout)
	fmt.Println(summaryLine(out, output, res, elapsed))
}

func summaryLine(out *termenv.Output, output string, res *template.BatchResult, elapsed time.Duration) string {
	rendered := out.String(fmt.Sprintf("%d rendered", len(res.Images))).Foreground(out.Color("2")).Bold()
	skipped := out.String(fmt.Sprintf("%d skipped", res.Skipped))
	if res.Skipped > 0 {
		skipped = skipped.Foreground(out.Color("3"))
	}
	failed := out.String(fmt.Sprintf("%d failed", len(res.Failures)))
	if len(res.Failures) > 0 {
		failed = failed.Foreground(out.Color("1")).Bold()
	}
	return fmt.Sprintf("Done: %s (%s, %s, %s) in %s", output, rendered, skipped, failed, elapsed.Round(time.Millisecond))
}
