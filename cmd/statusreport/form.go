package main

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/haowjy/meridian-status-go/statusreport"
)

// collectReport asks for the tier first, then for the fields of that tier.
func collectReport() (*statusreport.Report, error) {
	r := &statusreport.Report{
		Tier:         statusreport.TierGreen,
		TargetDate:   time.Now().Format(statusreport.DateLayout),
		WeeklyStatus: statusreport.StatusOnTrack,
	}

	if err := tierForm(r).Run(); err != nil {
		return nil, err
	}
	if err := reportForm(r).Run(); err != nil {
		return nil, err
	}
	r.TargetDate = strings.TrimSpace(r.TargetDate)
	return r, nil
}

func tierForm(r *statusreport.Report) *huh.Form {
	options := make([]huh.Option[statusreport.Tier], 0, len(statusreport.Tiers()))
	for _, t := range statusreport.Tiers() {
		options = append(options, huh.NewOption(t.Label(), t))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[statusreport.Tier]().
			Title("What is your project status?").
			Options(options...).
			Value(&r.Tier),
	))
}

func reportForm(r *statusreport.Report) *huh.Form {
	reasons := make([]huh.Option[string], 0, len(statusreport.StatusReasons()))
	for _, reason := range statusreport.StatusReasons() {
		reasons = append(reasons, huh.NewOption(reason, reason))
	}
	if r.Tier.Escalated() && r.PrimaryReason == "" {
		r.PrimaryReason = statusreport.StatusReasons()[0]
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(r.Tier.Label()).Description(r.Tier.Greeting()),
			huh.NewInput().Title("Enter the project name:").Value(&r.ProjectName).Validate(required),
			huh.NewText().Title("Executive Summary:").Value(&r.ExecutiveSummary).Validate(required),
			huh.NewInput().Title("Target Project Completion Date (YYYY-MM-DD):").Value(&r.TargetDate).Validate(validateDate),
			huh.NewSelect[statusreport.WeeklyStatus]().
				Title("What is the status of your project this week?").
				Options(huh.NewOptions(statusreport.WeeklyStatuses()...)...).
				Value(&r.WeeklyStatus),
		),
		huh.NewGroup(
			huh.NewText().Title("Project Activities this week:").Value(&r.ActivitiesThisWeek).Validate(required),
			huh.NewText().Title("Project Activities for next week:").Value(&r.ActivitiesNextWeek).Validate(required),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What is the primary reason for a " + r.Tier.Title() + " status?").
				Options(reasons...).
				Value(&r.PrimaryReason),
			huh.NewText().Title("Open EHI Flags:").Value(&r.OpenEHIFlags),
			huh.NewText().Title("Project Margin:").Value(&r.ProjectMargin),
			huh.NewText().Title("Project Risk:").Value(&r.ProjectRisk),
		).WithHideFunc(func() bool { return !r.Tier.Escalated() }),
	)
}

var errRequired = errors.New("please fill in this field")

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(statusreport.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use the YYYY-MM-DD format")
	}
	return nil
}
