package bedrock

import (
	"context"
	"encoding/json"
	"net/url"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// ModelFilter narrows ListFoundationModels. Empty fields are not sent.
type ModelFilter struct {
	// ByProvider is the vendor name, e.g. "anthropic"
	ByProvider string

	// ByOutputModality is TEXT, IMAGE or EMBEDDING
	ByOutputModality string

	// ByInferenceType is ON_DEMAND or PROVISIONED
	ByInferenceType string
}

func (f ModelFilter) query() url.Values {
	q := url.Values{}
	if f.ByProvider != "" {
		q.Set("byProvider", f.ByProvider)
	}
	if f.ByOutputModality != "" {
		q.Set("byOutputModality", f.ByOutputModality)
	}
	if f.ByInferenceType != "" {
		q.Set("byInferenceType", f.ByInferenceType)
	}
	return q
}

type listFoundationModelsResponse struct {
	ModelSummaries []struct {
		llmprovider.ModelSummary
		ModelLifecycle struct {
			Status string `json:"status"`
		} `json:"modelLifecycle"`
	} `json:"modelSummaries"`
}

// ListFoundationModels returns the foundation models available in the client's region.
func (c *Client) ListFoundationModels(ctx context.Context, filter ModelFilter) ([]llmprovider.ModelSummary, error) {
	raw, err := c.doGet(ctx, "/foundation-models", filter.query())
	if err != nil {
		return nil, err
	}

	var parsed listFoundationModelsResponse
	if err := json.Unmarshal(raw.body, &parsed); err != nil {
		return nil, &llmprovider.ResponseError{
			Provider: c.Name().String(),
			Reason:   "cannot decode model summaries: " + err.Error(),
			Body:     raw.body,
		}
	}

	models := make([]llmprovider.ModelSummary, 0, len(parsed.ModelSummaries))
	for _, s := range parsed.ModelSummaries {
		m := s.ModelSummary
		m.LifecycleStatus = s.ModelLifecycle.Status
		models = append(models, m)
	}
	c.logger.Debug("listed foundation models", "count", len(models), "region", c.region)
	return models, nil
}

// ListModels implements llmprovider.ModelLister with text-output models only.
func (c *Client) ListModels(ctx context.Context) ([]llmprovider.ModelSummary, error) {
	return c.ListFoundationModels(ctx, ModelFilter{ByOutputModality: llmprovider.ModalityText})
}

var _ llmprovider.ModelLister = (*Client)(nil)
