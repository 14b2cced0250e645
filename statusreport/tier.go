// Package statusreport turns a weekly project status form into a model prompt
// and asks a provider for the written summary.
package statusreport

import (
	"fmt"
	"slices"
	"strings"
)

// Tier is the overall project color.
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// Tiers returns every tier in display order.
func Tiers() []Tier {
	return []Tier{TierGreen, TierYellow, TierRed}
}

// ParseTier accepts a tier name or its display label, case-insensitively.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, t := range Tiers() {
		if s == string(t) || s == strings.ToLower(t.Label()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tier %q (want green, yellow or red)", s)
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return slices.Contains(Tiers(), t)
}

// Title is the capitalized tier name ("Yellow").
func (t Tier) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Label is the form label, e.g. "Green 🟢".
func (t Tier) Label() string {
	switch t {
	case TierGreen:
		return "Green 🟢"
	case TierYellow:
		return "Yellow 🟡"
	case TierRed:
		return "Red 🔴"
	default:
		return string(t)
	}
}

// Greeting is shown once the tier is picked.
func (t Tier) Greeting() string {
	if t == TierGreen {
		return "This seems to be on the right track! Good job!"
	}
	return "Don't worry it will be fine"
}

// Escalated reports whether the tier collects a primary reason, EHI flags,
// margin and risk.
func (t Tier) Escalated() bool {
	return t == TierYellow || t == TierRed
}

// WeeklyStatus is the schedule health for the current week.
type WeeklyStatus string

const (
	StatusOnTrack  WeeklyStatus = "On Track"
	StatusAtRisk   WeeklyStatus = "At Risk"
	StatusOffTrack WeeklyStatus = "Off Track"
)

// WeeklyStatuses returns the selectable weekly statuses.
func WeeklyStatuses() []WeeklyStatus {
	return []WeeklyStatus{StatusOnTrack, StatusAtRisk, StatusOffTrack}
}

// Valid reports whether s is one of the selectable statuses.
func (s WeeklyStatus) Valid() bool {
	return slices.Contains(WeeklyStatuses(), s)
}

// statusReasons is the fixed list of primary reasons for a Yellow or Red status.
var statusReasons = []string{
	"Pre-SOW - Work at risk (WAR)",
	"Scope - ProServe Initiated,Custom solution gap",
	"Customer - Market/business factors",
	"ProServe – Delivery delay",
	"ProServe - Service/ Platform/ Product",
	"ProServe – Budget",
	"ProServe – Consultant Availability/Skill Gap",
	"ProServe - Delivery Quality",
	"ProServe - Work at Risk (WAR)",
	"Customer - Budget Reduction",
	"Customer – Delay/Hold",
	"Customer – Alignment",
	"Customer - Readiness",
	"Customer – Resource Availability/Capacity/Skill Gap",
	"Customer - Required Onboarding/Screening of ProServe Consultants",
	"Customer - Sponsor",
	"Partner – Delivery delay",
	"Partner - Delivery Quality",
	"Partner - Alignment",
	"Partner – Resource Availability/Skill Gap",
	"Contract",
	"Scope - Customer",
	"Security",
	"Third party dependency (ISV, Vendor, SI, Regulator)",
}

// StatusReasons returns a copy of the selectable primary status reasons.
func StatusReasons() []string {
	return slices.Clone(statusReasons)
}

// IsStatusReason reports whether reason is in the fixed list.
func IsStatusReason(reason string) bool {
	return slices.Contains(statusReasons, reason)
}
