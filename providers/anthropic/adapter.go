package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// convertFromAnthropicResponse joins the text blocks of a message into one completion.
// A message without text blocks yields a nil Text.
func convertFromAnthropicResponse(msg *anthropic.Message) *llmprovider.GenerateResponse {
	var (
		sb      strings.Builder
		hasText bool
	)
	for _, content := range msg.Content {
		if content.Type != "text" {
			continue
		}
		sb.WriteString(content.Text)
		hasText = true
	}

	responseMetadata := make(map[string]interface{})
	if msg.ID != "" {
		responseMetadata["message_id"] = msg.ID
	}
	if msg.StopSequence != "" {
		responseMetadata["stop_sequence"] = msg.StopSequence
	}

	resp := &llmprovider.GenerateResponse{
		Model:            string(msg.Model),
		InputTokens:      int(msg.Usage.InputTokens),
		OutputTokens:     int(msg.Usage.OutputTokens),
		StopReason:       string(msg.StopReason),
		ResponseMetadata: responseMetadata,
	}
	if hasText {
		text := sb.String()
		resp.Text = &text
	}
	return resp
}
