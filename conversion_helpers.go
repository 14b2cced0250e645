package llmprovider

import (
	"github.com/tidwall/gjson"
)

// RequestFields converts typed params to the family's wire keys.
// Extra entries are copied last, so they win over typed fields with the same key.
// Typed parameters the family does not accept are dropped.
func (f *ModelFamily) RequestFields(params *RequestParams) map[string]any {
	fields := make(map[string]any)
	if params == nil {
		return fields
	}

	set := func(key string, value any) {
		if key != "" {
			fields[key] = value
		}
	}

	if params.MaxTokens != nil {
		set(f.Params.MaxTokens, *params.MaxTokens)
	}
	if params.Temperature != nil {
		set(f.Params.Temperature, *params.Temperature)
	}
	if params.TopP != nil {
		set(f.Params.TopP, *params.TopP)
	}
	if params.TopK != nil {
		set(f.Params.TopK, *params.TopK)
	}
	if len(params.Stop) > 0 {
		set(f.Params.Stop, params.Stop)
	}

	for k, v := range params.Extra {
		fields[k] = v
	}
	return fields
}

// Completion is the parsed result of a text-completion response body.
type Completion struct {
	// Text is nil when the completion path is absent
	Text       *string
	StopReason string
}

// ParseCompletion checks that body is a JSON object and extracts the family's
// completion and stop reason. A missing completion is not an error; a present
// completion that is not a string is.
func (f *ModelFamily) ParseCompletion(provider string, body []byte) (*Completion, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ResponseError{Provider: provider, Reason: "body is not valid JSON", Body: body}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, &ResponseError{Provider: provider, Reason: "body is not a JSON object", Body: body}
	}

	path := f.CompletionPath
	if path == "" {
		path = "completion"
	}

	out := &Completion{}
	if res := doc.Get(path); res.Exists() {
		switch res.Type {
		case gjson.String:
			text := res.String()
			out.Text = &text
		case gjson.Null:
			// explicit null is the same as absent
		default:
			return nil, &ResponseError{
				Provider: provider,
				Reason:   "field '" + path + "' is " + res.Type.String() + ", want string",
				Body:     body,
			}
		}
	}

	if f.StopReasonPath != "" {
		out.StopReason = doc.Get(f.StopReasonPath).String()
	}
	return out, nil
}
