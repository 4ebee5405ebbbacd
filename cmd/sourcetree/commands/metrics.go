package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maikgreubel/sourcetree/pkg/lang"
	"github.com/maikgreubel/sourcetree/pkg/metrics"
)

// Output format names for the metrics command.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatPlot  = "plot"
)

// defaultPlotOutput is the HTML file written by --format plot.
const defaultPlotOutput = "metrics.html"

// ErrUnknownFormat indicates an unrecognized --format value.
var ErrUnknownFormat = errors.New("unknown format (expected table, json, yaml or plot)")

// NewMetricsCommand creates the metrics subcommand.
func NewMetricsCommand() *cobra.Command {
	var (
		format    string
		workers   int
		showFiles bool
		plotOut   string
	)

	cmd := &cobra.Command{
		Use:   "metrics [path]",
		Short: "Compute line and complexity metrics for a source tree",
		Long: `Scan a source tree and report per-language line counts and a lexical
complexity score per file. Complexity is a heuristic over decision keywords
and operators, not a control-flow metric.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			environment, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			root := environment.cfg.Root
			if len(args) > 0 {
				root = args[0]
			}

			if workers == 0 {
				workers = environment.cfg.Metrics.Workers
			}

			aggregator := metrics.NewAggregator(workers)
			lister := metrics.DirLister{MaxFileSize: environment.cfg.Metrics.MaxFileSize}

			tree, err := aggregator.Aggregate(cmd.Context(), root, lister)
			if err != nil {
				return err
			}

			environment.logger.Debug("tree scanned",
				"root", root, "files", tree.TotalFiles, "skipped", len(tree.Skipped))

			return renderMetrics(cmd, tree, format, plotOut, showFiles)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml or plot")
	cmd.Flags().IntVar(&workers, "workers", 0, "scan worker count (0 = configured or per-CPU)")
	cmd.Flags().BoolVar(&showFiles, "files", false, "include the per-file listing")
	cmd.Flags().StringVarP(&plotOut, "output", "o", defaultPlotOutput, "output file for --format plot")

	return cmd
}

// renderMetrics writes the tree metrics in the requested format.
func renderMetrics(cmd *cobra.Command, tree *metrics.TreeMetrics, format, plotOut string, showFiles bool) error {
	switch format {
	case formatTable:
		renderMetricsTable(cmd, tree, showFiles)

		return nil
	case formatJSON:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		return encoder.Encode(tree)
	case formatYAML:
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(tree)
	case formatPlot:
		return renderMetricsPlot(tree, plotOut)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// renderMetricsTable prints per-language rollups and totals.
func renderMetricsTable(cmd *cobra.Command, tree *metrics.TreeMetrics, showFiles bool) {
	out := cmd.OutOrStdout()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Language", "Files", "Lines", "Complexity"})

	for _, tag := range sortedTags(tree) {
		summary := tree.PerLanguage[tag]
		tbl.AppendRow(table.Row{string(tag), summary.Files, summary.Lines, summary.Complexity})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		humanize.Comma(int64(tree.TotalFiles)),
		humanize.Comma(int64(tree.TotalLines)),
		fmt.Sprintf("avg %.1f lines/file", tree.AverageLines),
	})
	tbl.Render()

	if showFiles {
		fileTbl := table.NewWriter()
		fileTbl.SetOutputMirror(out)
		fileTbl.SetStyle(table.StyleLight)
		fileTbl.AppendHeader(table.Row{"File", "Language", "Size", "Lines", "Blank", "Comment", "Complexity"})

		for _, record := range tree.Files {
			fileTbl.AppendRow(table.Row{
				record.Path,
				string(record.Language),
				humanize.Bytes(uint64(record.Size)),
				record.Lines,
				record.Blank,
				record.Comment,
				record.Complexity,
			})
		}

		fileTbl.Render()
	}

	for _, skipped := range tree.Skipped {
		fmt.Fprintf(out, "skipped %s: %s\n", skipped.Path, skipped.Reason)
	}

	if tree.Partial {
		fmt.Fprintln(out, "warning: scan was canceled, results are partial")
	}
}

// renderMetricsPlot writes a per-language bar chart as a standalone HTML file.
func renderMetricsPlot(tree *metrics.TreeMetrics, output string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lines by language"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	tags := sortedTags(tree)
	labels := make([]string, 0, len(tags))
	lines := make([]opts.BarData, 0, len(tags))

	for _, tag := range tags {
		labels = append(labels, string(tag))
		lines = append(lines, opts.BarData{Value: tree.PerLanguage[tag].Lines})
	}

	bar.SetXAxis(labels).AddSeries("lines", lines)

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer file.Close()

	err = bar.Render(file)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

// sortedTags returns the language tags of a tree in lexical order.
func sortedTags(tree *metrics.TreeMetrics) []lang.Tag {
	tags := make([]lang.Tag, 0, len(tree.PerLanguage))
	for tag := range tree.PerLanguage {
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	return tags
}
