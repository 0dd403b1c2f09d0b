package agent

import "fmt"

// Static user-facing templates. Every terminal Result carries one of these
// (or model-generated text); raw errors never reach the end user.
const (
	msgFallback       = "Sorry, I didn't understand that."
	msgUnknownTool    = "Unknown tool."
	msgLLMUnreachable = "Sorry, I'm having trouble reaching the language model server right now. Please try again in a moment."
	msgRewriteFailed  = "Error generating final response."
	msgEscalation     = "I'm sorry, you seem frustrated. I'm transferring you to a live agent now."
)

func msgCancelSuccess(orderID string) string {
	return fmt.Sprintf("Your order %s has been canceled successfully.", orderID)
}

func msgCancelDenied(orderID string) string {
	return fmt.Sprintf("Order %s cannot be canceled due to policy.", orderID)
}

func msgTrackStatus(orderID, status string) string {
	return fmt.Sprintf("The current status of order %s is: %s.", orderID, status)
}

func msgError(detail string) string {
	return fmt.Sprintf("Sorry, an error occurred: %s", detail)
}
