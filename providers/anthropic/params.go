package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// Text-completion turn markers. The Messages API carries turns structurally,
// so they are removed from the prompt.
const (
	humanMarker     = "\n\nHuman:"
	assistantMarker = "\n\nAssistant:"
)

// userText strips one leading Human marker and one trailing Assistant marker.
func userText(prompt string) string {
	text := strings.TrimPrefix(prompt, humanMarker)
	text = strings.TrimSuffix(strings.TrimRight(text, " \n"), assistantMarker)
	return strings.TrimSpace(text)
}

// buildMessageParams constructs Anthropic API parameters for a single user turn.
func buildMessageParams(model, prompt string, params *llmprovider.RequestParams, defaultMaxTokens int) (anthropic.MessageNewParams, error) {
	if params == nil {
		params = &llmprovider.RequestParams{}
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return anthropic.MessageNewParams{}, err
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(params.GetMaxTokens(defaultMaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText(prompt))),
		},
	}

	// Temperature
	if params.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}

	// Top-P
	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}

	// Top-K
	if params.TopK != nil {
		apiParams.TopK = anthropic.Int(int64(*params.TopK))
	}

	// Stop sequences
	if len(params.Stop) > 0 {
		apiParams.StopSequences = params.Stop
	}

	// System prompt
	if params.System != nil {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *params.System,
			},
		}
	}

	return apiParams, nil
}
