package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"churnboard/adapters/charts"
	"churnboard/internal/config"
	"churnboard/internal/dataset"
	"churnboard/internal/metrics"
	"churnboard/ui/services"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configFile string
	dataFile   string
	churn      string
	min        string
	max        string
	asJSON     bool

	app *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "churnboard-cli",
		Short:         "Churn dashboard numbers in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.configFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				flags.dataFile = cfg.Data.File
			}
			cfg.Data.File = flags.dataFile
			flags.app = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&flags.dataFile, "data", config.DefaultDataFile, "Path to the churn CSV or XLSX file (defaults to DATA_FILE or the config file)")
	rootCmd.PersistentFlags().StringVar(&flags.churn, "churn", "All", "Churn filter: All|Yes|No")
	rootCmd.PersistentFlags().StringVar(&flags.min, "min", "", "Minimum monthly charge (defaults to the dataset minimum)")
	rootCmd.PersistentFlags().StringVar(&flags.max, "max", "", "Maximum monthly charge (defaults to the dataset maximum)")
	rootCmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(
		newSummaryCmd(flags),
		newPreviewCmd(flags),
		newCorrelationCmd(flags),
		newChartCmd(flags),
		newConfigCmd(flags),
	)
	return rootCmd
}

func newDashboard(flags *globalFlags, previewRows int) *services.DashboardService {
	return services.NewDashboardService(dataset.NewLoader(flags.dataFile), previewRows, flags.app.Data.HistogramBins)
}

func build(ctx context.Context, flags *globalFlags, previewRows int) (*services.Dashboard, error) {
	dash := newDashboard(flags, previewRows)
	sel, err := dash.Select(ctx, flags.churn, flags.min, flags.max)
	if err != nil {
		return nil, err
	}
	return dash.Build(ctx, sel)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTenure(s metrics.Summary) string {
	if s.AvgTenure == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f months", *s.AvgTenure)
}

func newSummaryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print total customers, churn rate and average tenure",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := build(cmd.Context(), flags, flags.app.Data.PreviewRows)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.asJSON {
				return printJSON(out, d.Metrics)
			}

			fmt.Fprintf(out, "Source: %s (%d rows, sha %s)\n", d.Dataset.Source, d.Dataset.Rows, d.Dataset.Fingerprint)
			fmt.Fprintf(out, "Filter: churn=%s monthly charges %.2f to %.2f\n", d.Selection.Churn, d.Selection.MinCharge, d.Selection.MaxCharge)
			if d.Dataset.Repair.Coerced > 0 {
				fmt.Fprintf(out, "Repaired: %d TotalCharges cells set to median %.2f\n", d.Dataset.Repair.Coerced, d.Dataset.Repair.Median)
			}
			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Total Customers\t%d\n", d.Metrics.Total)
			fmt.Fprintf(tw, "Churn Rate\t%.2f%%\n", d.Metrics.ChurnRate)
			fmt.Fprintf(tw, "Average Tenure\t%s\n", formatTenure(d.Metrics))
			for _, c := range d.Churn {
				fmt.Fprintf(tw, "Churn=%s\t%d\n", c.Value, c.Count)
			}
			return tw.Flush()
		},
	}
}

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the first rows of the filtered dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows <= 0 {
				rows = flags.app.Data.PreviewRows
			}
			d, err := build(cmd.Context(), flags, rows)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.asJSON {
				return printJSON(out, d.Preview)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "customerID\ttenure\tContract\tMonthlyCharges\tTotalCharges\tChurn")
			for _, r := range d.Preview {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f\t%.2f\t%s\n", r.CustomerID, r.Tenure, r.Contract, r.MonthlyCharges, r.TotalCharges, r.Churn)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 0, "Number of rows to print (defaults to PREVIEW_ROWS)")
	return cmd
}

func newCorrelationCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "correlation",
		Short: "Print the Pearson correlation matrix of the numeric columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := build(cmd.Context(), flags, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.asJSON {
				return printJSON(out, d.Correlation)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprint(tw, "\t")
			for _, c := range d.Correlation.Columns {
				fmt.Fprintf(tw, "%s\t", c)
			}
			fmt.Fprintln(tw)
			for i, row := range d.Correlation.Values {
				fmt.Fprintf(tw, "%s\t", d.Correlation.Columns[i])
				for _, v := range row {
					fmt.Fprintf(tw, "%s\t", correlationCell(v))
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

func newChartCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "chart NAME",
		Short:     "Render one dashboard chart to a PNG file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: charts.Names,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := newDashboard(flags, 0)
			sel, err := dash.Select(cmd.Context(), flags.churn, flags.min, flags.max)
			if err != nil {
				return err
			}
			svc := services.NewChartService(dash, charts.NewRenderer(flags.app.Data.HistogramBins), 1)
			img, err := svc.Render(cmd.Context(), args[0], sel)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".png"
			}
			if err := os.WriteFile(output, img, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(img))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to NAME.png)")
	return cmd
}

func correlationCell(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := flags.app.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
