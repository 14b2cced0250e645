package statusreport

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the accepted target completion date format.
const DateLayout = "2006-01-02"

var (
	// ErrMissingField is wrapped by FieldErrors for empty required fields.
	ErrMissingField = errors.New("statusreport: required field is empty")

	// ErrInvalidField is wrapped by FieldErrors for values outside the allowed set.
	ErrInvalidField = errors.New("statusreport: invalid field value")
)

// Report is one weekly status submission.
type Report struct {
	Tier               Tier         `yaml:"tier"`
	ProjectName        string       `yaml:"project_name"`
	ExecutiveSummary   string       `yaml:"executive_summary"`
	TargetDate         string       `yaml:"target_date"` // YYYY-MM-DD
	WeeklyStatus       WeeklyStatus `yaml:"weekly_status"`
	ActivitiesThisWeek string       `yaml:"activities_this_week"`
	ActivitiesNextWeek string       `yaml:"activities_next_week"`

	// Yellow and Red only
	PrimaryReason string `yaml:"primary_reason,omitempty"`
	OpenEHIFlags  string `yaml:"open_ehi_flags,omitempty"`
	ProjectMargin string `yaml:"project_margin,omitempty"`
	ProjectRisk   string `yaml:"project_risk,omitempty"`
}

// FieldError describes one problem with a report field.
type FieldError struct {
	Field  string
	Reason string
	Err    error // ErrMissingField or ErrInvalidField
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks the report and returns every problem at once, joined with
// errors.Join. Project name, executive summary and both activity fields are
// required for every tier.
func (r *Report) Validate() error {
	var errs []error
	missing := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, &FieldError{Field: field, Reason: "is required", Err: ErrMissingField})
		}
	}
	invalid := func(field, reason string) {
		errs = append(errs, &FieldError{Field: field, Reason: reason, Err: ErrInvalidField})
	}

	if !r.Tier.Valid() {
		invalid("tier", fmt.Sprintf("%q is not green, yellow or red", r.Tier))
	}
	missing("project_name", r.ProjectName)
	missing("executive_summary", r.ExecutiveSummary)
	missing("activities_this_week", r.ActivitiesThisWeek)
	missing("activities_next_week", r.ActivitiesNextWeek)

	if _, err := r.Target(); err != nil {
		invalid("target_date", fmt.Sprintf("%q is not a YYYY-MM-DD date", r.TargetDate))
	}
	if r.WeeklyStatus != "" && !r.WeeklyStatus.Valid() {
		invalid("weekly_status", fmt.Sprintf("%q is not On Track, At Risk or Off Track", r.WeeklyStatus))
	}
	if r.Tier.Escalated() && r.PrimaryReason != "" && !IsStatusReason(r.PrimaryReason) {
		invalid("primary_reason", fmt.Sprintf("%q is not a known status reason", r.PrimaryReason))
	}

	return errors.Join(errs...)
}

// Target returns the parsed target completion date. Surrounding whitespace
// is ignored.
func (r *Report) Target() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(r.TargetDate))
}

// ParseReport decodes a YAML report.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if r.Tier != "" {
		tier, err := ParseTier(string(r.Tier))
		if err != nil {
			return nil, err
		}
		r.Tier = tier
	}
	return &r, nil
}

// LoadReport reads a YAML report from path.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return ParseReport(data)
}
