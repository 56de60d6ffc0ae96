// Package badges maps review statuses to the labels and CSS classes the
// dashboard renders. Every function is total: unknown input gets the
// fallback style.
package badges

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"linkdesk-backend/internal/models"
)

type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

const (
	classGray   = "bg-gray-100 text-gray-800"
	classYellow = "bg-yellow-100 text-yellow-800"
	classBlue   = "bg-blue-100 text-blue-800"
	classGreen  = "bg-green-100 text-green-800"
	classRed    = "bg-red-100 text-red-800"
	classPurple = "bg-purple-100 text-purple-800"
)

var submissionBadges = map[models.SubmissionStatus]Badge{
	models.StatusPending:        {Label: "Pending", Class: classYellow},
	models.StatusSubmitted:      {Label: "Submitted", Class: classBlue},
	models.StatusApproved:       {Label: "Approved", Class: classGreen},
	models.StatusRejected:       {Label: "Rejected", Class: classRed},
	models.StatusClientApproved: {Label: "Client Approved", Class: classGreen},
	models.StatusClientRejected: {Label: "Client Rejected", Class: classRed},
}

var qualificationBadges = map[string]Badge{
	string(models.QualificationHighQuality):  {Label: "★★★ High Quality", Class: classGreen},
	string(models.QualificationAverage):      {Label: "★★ Average Quality", Class: classYellow},
	string(models.QualificationDisqualified): {Label: "✗ Disqualified", Class: classRed},
	string(models.QualificationPending):      {Label: "Pending Review", Class: classGray},
}

var overlapBadges = map[string]Badge{
	"direct":  {Label: "Direct Overlap", Class: classGreen},
	"related": {Label: "Related Overlap", Class: classBlue},
	"both":    {Label: "Direct + Related", Class: classPurple},
	"none":    {Label: "No Overlap", Class: classGray},
}

var authorityBadges = map[string]Badge{
	"strong":   {Label: "Strong Authority", Class: classGreen},
	"moderate": {Label: "Moderate Authority", Class: classYellow},
	"weak":     {Label: "Weak Authority", Class: classRed},
	"n/a":      {Label: "No Authority Data", Class: classGray},
}

func SubmissionBadge(status models.SubmissionStatus) Badge {
	if b, ok := submissionBadges[status]; ok {
		return b
	}
	return fallback(string(status))
}

// ForSubmission badges the collapsed status of s.
func ForSubmission(s *models.SiteSubmission) Badge {
	if s == nil {
		return fallback("")
	}
	return SubmissionBadge(s.EffectiveStatus())
}

func QualificationBadge(status string) Badge {
	return lookup(qualificationBadges, status)
}

func OverlapBadge(status string) Badge {
	return lookup(overlapBadges, status)
}

func AuthorityBadge(tier string) Badge {
	return lookup(authorityBadges, tier)
}

func lookup(table map[string]Badge, key string) Badge {
	if b, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return b
	}
	return fallback(key)
}

func fallback(raw string) Badge {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Badge{Label: "Unknown", Class: classGray}
	}
	// a Caser is stateful, so one per call
	label := cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(raw))
	return Badge{Label: label, Class: classGray}
}
