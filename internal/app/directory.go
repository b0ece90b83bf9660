package app

import "github.com/alexanderramin/docket/internal/domain"

// TemplateStats aggregates one template's assignments. Only the block that
// matches the tracking mode is filled in.
type TemplateStats struct {
	TemplateID   string
	TemplateName string
	Category     domain.Category
	TrackingMode domain.TrackingMode
	Archived     bool

	Total       int
	Instances   int
	ByStatus    map[domain.Status]int
	Outstanding int
	Overdue     int

	// progress
	CompletionPct float64

	// compliance
	Valid        int
	ExpiringSoon int
	Expired      int
	Missing      int

	// issuance
	Issued       int
	Acknowledged int
	Refused      int
}
