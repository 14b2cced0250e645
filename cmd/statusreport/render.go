package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	llmprovider "github.com/haowjy/meridian-status-go"
	"github.com/haowjy/meridian-status-go/statusreport"
)

var (
	colorGreen  = lipgloss.Color("#1a7f37")
	colorYellow = lipgloss.Color("#9a6700")
	colorRed    = lipgloss.Color("#cf222e")
	colorMuted  = lipgloss.Color("#656d76")

	dimStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(colorRed)
)

func tierColor(t statusreport.Tier) lipgloss.Color {
	switch t {
	case statusreport.TierYellow:
		return colorYellow
	case statusreport.TierRed:
		return colorRed
	default:
		return colorGreen
	}
}

func banner(t statusreport.Tier) string {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tierColor(t)).
		Render("Project Status: " + t.Label())
}

// renderMarkdown converts text to terminal output. Falls back to the plain
// text if glamour cannot build a renderer.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// printSummary writes the banner and the summary. raw skips markdown rendering.
func printSummary(w io.Writer, r *statusreport.Report, s *statusreport.Summary, raw bool) {
	if raw {
		_, _ = fmt.Fprintln(w, s.Text)
		return
	}
	_, _ = fmt.Fprintln(w, banner(r.Tier))
	_, _ = fmt.Fprint(w, renderMarkdown(s.Text, 100))
	_, _ = fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%s · %d in / %d out tokens", s.Model, s.InputTokens, s.OutputTokens)))
}

// failureNotice is the user-facing message for err. Details are left to the
// debug log.
func failureNotice(err error) string {
	msg := "Something went wrong while generating the summary. Please try again."
	var fieldErr *statusreport.FieldError
	switch {
	case errors.As(err, &fieldErr):
		msg = "Please fill in all the fields to generate the summary.\n" + err.Error()
	case errors.Is(err, llmprovider.ErrMissingCompletion):
		msg = "The model returned no summary. Please try again."
	case llmprovider.IsAuthError(err):
		msg = "The model service rejected the credentials. Check AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY."
	case errors.Is(err, llmprovider.ErrRateLimited):
		msg = "The model service is busy. Please try again in a moment."
	case errors.Is(err, llmprovider.ErrInvalidModel):
		msg = "The configured model is not available: " + err.Error()
	}
	return errorBlockStyle.Render(msg)
}
