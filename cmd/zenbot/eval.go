package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zenbot/evaluation/harness"
)

func newEvalCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the agent over a labeled example set",
	}
	cmd.AddCommand(newEvalQuantitativeCommand(flags))
	cmd.AddCommand(newEvalQualitativeCommand(flags))
	return cmd
}

func newEvalQuantitativeCommand(flags *rootFlags) *cobra.Command {
	var (
		csvPath string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "quantitative",
		Short: "Label intent, policy and API errors per example",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			examples, err := harness.LoadExamples(csvPath)
			if err != nil {
				return err
			}

			driver := harness.NewDriver(a.router, a.component("driver"))
			cmd.Printf("%s run %s: %d examples, agent %s\n",
				yellow("eval"), driver.RunID(), len(examples), a.cfg.Agent.Variant)

			records := driver.RunQuantitative(cmd.Context(), examples)
			if err := harness.WriteRecords(outPath, records); err != nil {
				return err
			}

			cmd.Println(green(fmt.Sprintf("wrote %d records to %s (%d skipped)",
				len(records), outPath, len(examples)-len(records))))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "input example-set CSV")
	cmd.Flags().StringVar(&outPath, "out", "eval_quantitative.csv", "output detail CSV")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func newEvalQualitativeCommand(flags *rootFlags) *cobra.Command {
	var (
		csvPath    string
		outPath    string
		rubricPath string
	)

	cmd := &cobra.Command{
		Use:   "qualitative",
		Short: "Judge response quality with the completion service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			examples, err := harness.LoadExamples(csvPath)
			if err != nil {
				return err
			}

			driver := harness.NewDriver(a.router, a.component("driver"))
			judge := harness.NewJudge(a.llm, a.cfg.Eval.PassThreshold)
			if rubricPath != "" {
				rubric, err := harness.LoadRubric(rubricPath)
				if err != nil {
					return err
				}
				judge = harness.NewRubricJudge(a.llm, rubric)
			}
			cmd.Printf("%s run %s: %d examples, agent %s, judge model %s\n",
				yellow("eval"), driver.RunID(), len(examples), a.cfg.Agent.Variant, a.llm.Model())

			records := driver.RunQualitative(cmd.Context(), examples, judge)
			if err := harness.WriteQualitativeRecords(outPath, records); err != nil {
				return err
			}

			cmd.Println(green(fmt.Sprintf("wrote %d judged records to %s (%d skipped)",
				len(records), outPath, len(examples)-len(records))))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "input example-set CSV")
	cmd.Flags().StringVar(&outPath, "out", "eval_qualitative.csv", "output detail CSV")
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "YAML rubric overriding the judge threshold and guidance")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
