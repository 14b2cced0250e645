package statusreport

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var prompts = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Turn markers of the Claude text-completion format.
const (
	HumanPrefix     = "\n\nHuman: "
	AssistantSuffix = "\n\nAssistant:"
)

type promptData struct {
	Report *Report
	Label  string // "Yellow 🟡"
	Word   string // "yellow"
	Title  string // "Yellow"
}

// RenderPrompt renders the tier's prompt for r. The report is not validated;
// call Validate first.
func RenderPrompt(r *Report) (string, error) {
	name := "green"
	switch r.Tier {
	case TierGreen:
	case TierYellow, TierRed:
		name = "escalated"
	default:
		return "", fmt.Errorf("no prompt template for tier %q", r.Tier)
	}

	var sb strings.Builder
	err := prompts.ExecuteTemplate(&sb, name, promptData{
		Report: r,
		Label:  r.Tier.Label(),
		Word:   string(r.Tier),
		Title:  r.Tier.Title(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", r.Tier, err)
	}
	return HumanPrefix + strings.TrimSpace(sb.String()) + AssistantSuffix, nil
}
