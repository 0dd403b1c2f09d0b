package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTTY reports whether both ends of the terminal are interactive; banners
// and colors stay off when output is piped.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errorText(msg string) string {
	return red("error: " + msg)
}

// rootFlags are the persistent options shared by every subcommand.
type rootFlags struct {
	configPath  string
	logPath     string
	variant     string
	metricsAddr string
}

// NewRootCommand builds the zenbot command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "zenbot",
		Short: "Order-support chatbot and its evaluation harness",
		Long: `zenbot runs an order-support chatbot (a rule-based baseline or an
LLM tool-calling agent) and the harness that evaluates it: quantitative
intent/policy/API error metrics and LLM-judged response quality.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (defaults plus ZENBOT_* env otherwise)")
	rootCmd.PersistentFlags().StringVar(&flags.logPath, "log-path", "", "append-only log file (no file logging when empty)")
	rootCmd.PersistentFlags().StringVar(&flags.variant, "agent", "", "agent variant override: baseline or zenbot")
	rootCmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090; off when empty)")

	rootCmd.AddCommand(newChatCommand(flags))
	rootCmd.AddCommand(newEvalCommand(flags))
	rootCmd.AddCommand(newAnalyzeCommand(flags))
	return rootCmd
}
