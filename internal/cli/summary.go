package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/matzehuels/dazed/pkg/report"
)

// maxSummaryRows caps the findings table; the report holds the rest.
const maxSummaryRows = 50

// printSummary prints the recap and findings of rep to stdout.
func printSummary(rep *report.Report, stats *scanStats) {
	writeSummary(os.Stdout, rep, stats)
}

func writeSummary(w io.Writer, rep *report.Report, stats *scanStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Summary"))
	kv := func(k, v string) {
		fmt.Fprintf(w, "%-14s %s\n", StyleDim.Render(k), StyleValue.Render(v))
	}
	kv("host", rep.Host)
	kv("organizations", strconv.Itoa(rep.OrgsScanned))
	kv("repositories", strconv.Itoa(rep.ReposScanned))
	kv("vulnerable", StyleDanger.Render(strconv.Itoa(rep.Vulnerable)))
	kv("suspicious", StyleWarning.Render(strconv.Itoa(rep.Sus)))
	if stats != nil {
		kv("lookups", fmt.Sprintf("%d (%d failed, %d cache hits)", stats.lookups.Load(), stats.lookupErrors.Load(), stats.cacheHits.Load()))
		if n := stats.pauses.Load(); n > 0 {
			kv("rate pauses", strconv.FormatInt(n, 10))
		}
	}
	kv("elapsed", (time.Duration(rep.TimeElapsed * float64(time.Second))).Round(time.Millisecond).String())

	findings := rep.Findings()
	if len(findings) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleSuccess.Render("No dependency confusion found"))
	} else {
		fmt.Fprintln(w)
		table := newTable(w)
		table.Header([]string{"Organization", "Repository", "File", "Name", "Status"})
		for i, f := range findings {
			if i == maxSummaryRows {
				break
			}
			status := "vulnerable"
			if f.Sus {
				status = "suspicious"
			}
			_ = table.Append([]string{f.Org, f.Repo, f.File, f.Name, status})
		}
		_ = table.Render()
		if n := len(findings) - maxSummaryRows; n > 0 {
			fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("... and %d more, see the report", n)))
		}
	}

	var failed [][]string
	for _, o := range rep.Orgs {
		if o.Error != "" {
			failed = append(failed, []string{o.Org, "", o.Error})
		}
		for _, r := range o.Repos {
			for _, e := range r.Errors {
				failed = append(failed, []string{o.Org, r.Repo, e})
			}
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%d scan units failed", len(failed))))
		table := newTable(w)
		table.Header([]string{"Organization", "Repository", "Error"})
		_ = table.Bulk(failed)
		_ = table.Render()
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting:   tw.CellFormatting{AutoWrap: tw.WrapNormal},
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: 60},
			},
		}),
	)
}
