package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"zenbot/evaluation/harness"
	"zenbot/evaluation/metrics"
)

func newAnalyzeCommand(_ *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate metrics from an evaluation detail CSV",
	}
	cmd.AddCommand(newAnalyzeQuantitativeCommand())
	cmd.AddCommand(newAnalyzeQualitativeCommand())
	return cmd
}

func newAnalyzeQuantitativeCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "quantitative <detail.csv>",
		Short: "Classification, intent and latency metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := harness.LoadRecords(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = filepath.Dir(args[0])
			}

			summary := metrics.Summarize(records)
			summaryPath := filepath.Join(outDir, "error_metrics_summary.csv")
			if err := metrics.WriteSummary(summaryPath, summary); err != nil {
				return err
			}
			if err := metrics.WriteROCCurves(outDir, summary); err != nil {
				return err
			}

			printClassification(cmd, "policy_error", summary.Policy)
			printClassification(cmd, "api_error", summary.API)

			cmd.Println(bold("\n--- Intent ---"))
			if summary.Intent.Insufficient {
				cmd.Println(yellow("not enough valid data"))
			} else {
				cmd.Printf("accuracy: %.3f\n", summary.Intent.Accuracy)
				cmd.Printf("error rate: %.3f\n", summary.Intent.ErrorRate)
			}
			if summary.Intent.Total > 0 {
				cmd.Printf("unknown ratio: %.3f\n", summary.Intent.UnknownRatio)
			}

			cmd.Println(bold("\n--- Response time (seconds) ---"))
			l := summary.Latency
			cmd.Printf("count: %d\n", l.Count)
			cmd.Printf("mean: %.6f  std: %.6f\n", l.Mean, l.Std)
			cmd.Printf("min: %.6f  p50: %.6f  p95: %.6f  p99: %.6f  max: %.6f\n",
				l.Min, l.P50, l.P95, l.P99, l.Max)
			cmd.Printf("responses over 1s: %.3f\n", l.SlowRatio)

			cmd.Println(green("\nmetrics saved to " + summaryPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (defaults beside the input)")
	return cmd
}

func printClassification(cmd *cobra.Command, column string, c metrics.Classification) {
	cmd.Println(bold("\n--- Metrics for " + column + " ---"))
	if c.Insufficient {
		cmd.Println(yellow("not enough valid data to compute metrics"))
		return
	}
	cmd.Printf("precision: %.3f  recall: %.3f  f1: %.3f\n", c.Precision, c.Recall, c.F1)
	cmd.Printf("fpr: %.3f  fnr: %.3f\n", c.FPR, c.FNR)
	if c.ROC != nil {
		cmd.Printf("auc: %.3f\n", c.ROC.AUC)
	} else {
		cmd.Println(yellow("ROC not applicable: single-class ground truth"))
	}
}

func newAnalyzeQualitativeCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "qualitative <detail.csv>",
		Short: "Descriptive statistics and score correlations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := harness.LoadQualitativeRecords(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = filepath.Dir(args[0])
			}

			summary := metrics.SummarizeQualitative(records)
			statsPath := filepath.Join(outDir, "descriptive_stats.csv")
			if err := metrics.WriteDescriptiveStats(statsPath, summary); err != nil {
				return err
			}
			corrPath := filepath.Join(outDir, "correlation_matrix.csv")
			if err := metrics.WriteCorrelationMatrix(corrPath, summary); err != nil {
				return err
			}

			cmd.Println(bold("--- Descriptive statistics ---"))
			for _, name := range metrics.ScoreColumns[:3] {
				d := summary.Stats[name]
				cmd.Printf("%-12s count=%d mean=%.2f std=%.2f min=%.0f max=%.0f\n",
					name, d.Count, d.Mean, d.Std, d.Min, d.Max)
			}
			cmd.Printf("\npass rate: %.2f\n", summary.PassRate)

			cmd.Println(green("\nstats saved to " + statsPath))
			cmd.Println(green("correlations saved to " + corrPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (defaults beside the input)")
	return cmd
}
