package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zenbot/internal/agent"
)

const baselineBanner = `====================================================================
Baseline Rule-Based Chatbot
====================================================================

I can track or cancel your order.
`

const zenbotBanner = `====================================================================
ZenBot is live!
====================================================================

Hey there! I'm ZenBot. Not a human, but here to help!
I don't get angry, just keep it bot-positive.
I can track or cancel your order.
`

func newChatCommand(flags *rootFlags) *cobra.Command {
	var (
		orderID   string
		orderDate string
		userID    string
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the configured agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			order := agent.OrderContext{
				OrderID:   orderID,
				OrderDate: orderDate,
				UserID:    userID,
			}
			message := args[0]

			printBanner(cmd, a.cfg.Agent.Variant, message, order)

			result, err := a.router.Run(cmd.Context(), message, order)
			if err != nil {
				return err
			}

			cmd.Println(bold(result.FinalResponse))
			if isTTY() {
				cmd.Printf("\n%s tool=%s time=%.3fs\n", cyan("--"), result.ToolName, result.ResponseSeconds())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "order identifier")
	cmd.Flags().StringVar(&orderDate, "order-date", "", "order date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&userID, "user-id", "", "user identifier")
	_ = cmd.MarkFlagRequired("order-id")
	_ = cmd.MarkFlagRequired("order-date")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// printBanner shows the agent banner and the input data section, but only
// on an interactive terminal.
func printBanner(cmd *cobra.Command, variant, message string, order agent.OrderContext) {
	if !isTTY() {
		return
	}

	banner := baselineBanner
	if variant == string(agent.VariantZenBot) {
		banner = zenbotBanner
	}
	cmd.Println(green(banner))

	orderJSON, _ := json.MarshalIndent(order, "", "  ")
	cmd.Println(blue(strings.Repeat("=", 68)))
	cmd.Println(blue("Using input data:"))
	cmd.Println(blue(strings.Repeat("=", 68)))
	cmd.Println()
	cmd.Println(fmt.Sprintf("Prompt: %s", message))
	cmd.Println(fmt.Sprintf("Order info: %s", orderJSON))
	cmd.Println()
}
