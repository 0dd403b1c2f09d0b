package agent

import (
	"encoding/json"
	"fmt"

	"zenbot/internal/llm"
)

const systemPrompt = `You are ZenBot, a helpful order support assistant.

You have access to tools to help the user:
- Use the ` + "`track_order`" + ` tool if the user wants to check or track their order.
- Use the ` + "`cancel_order`" + ` tool if the user wants to cancel their order.

Call the appropriate tool **only** if the user's intent is clear.

Examples:
- "Where is my package?" - call ` + "`track_order`" + `
- "Cancel my order" - call ` + "`cancel_order`" + `
- "Can you help me?" - do not call any tool

Only respond with a tool call if the user's message contains or implies the need to **track** or **cancel** an order.`

const rewriteInstruction = `Use the information returned by the tool and translate it into a natural language response. ` +
	`Don't repeat the tool name or any technical details. ` +
	`Don't include any code or JSON. ` +
	`Don't mention the function call or the tool. ` +
	`Don't mention the order ID or any other sensitive information. ` +
	`Don't use any technical jargon. ` +
	`Don't use any abbreviations. ` +
	`Don't use any slang. ` +
	`Make your reply coherent and polite.`

// toolSchema exposes the two order operations to the decision phase.
func toolSchema() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		llm.NewFunctionTool("cancel_order", "Cancel an order if it meets policy requirements.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "string",
					"description": "The ID of the order to cancel",
				},
				"order_date": map[string]any{
					"type":        "string",
					"description": "The date the order was placed (format: YYYY-MM-DD)",
				},
				"user_id": map[string]any{
					"type":        "string",
					"description": "The ID of the user who placed the order",
				},
			},
			"required": []string{"order_id", "order_date", "user_id"},
		}),
		llm.NewFunctionTool("track_order", "Retrieve the current status of an order.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "string",
					"description": "The ID of the order to track",
				},
			},
			"required": []string{"order_id"},
		}),
	}
}

// decisionMessages builds the decision-phase conversation: the system
// instruction, one track and one cancel few-shot exemplar, then the real
// user turn with the serialized order context appended.
func decisionMessages(userInput string, order OrderContext) []llm.Message {
	orderJSON, _ := json.Marshal(order)

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{
			Role:    "user",
			Content: fmt.Sprintf("Where is my package? My order info is: %s", orderJSON),
		},
		{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:   "tool_1",
				Type: "function",
				Function: llm.FunctionCall{
					Name:      "track_order",
					Arguments: `{ "order_id": "123" }`,
				},
			}},
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("I need to cancel my order. My order info is: %s", orderJSON),
		},
		{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:   "tool_2",
				Type: "function",
				Function: llm.FunctionCall{
					Name:      "cancel_order",
					Arguments: `{ "order_id": "123", "order_date": "2025-04-05", "user_id": "user_1" }`,
				},
			}},
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("%s. My order info is: %s", userInput, orderJSON),
		},
	}
}
