package models

// Category identifies a notification type with its own preference flag and template.
type Category string

const (
	CategoryInactivityGentle    Category = "inactivity_gentle"
	CategoryInactivityUrgent    Category = "inactivity_urgent"
	CategoryMotivationalWelcome Category = "motivational_welcome"
	CategoryImmediateWelcome    Category = "immediate_welcome"
	CategoryWeeklyDigest        Category = "weekly_digest"
	CategorySupportReply        Category = "support_reply"

	// CategoryDisputeResolved labels transactional dispute emails in the send
	// log. It carries no preference flag: dispute resolutions are always sent.
	CategoryDisputeResolved Category = "dispute_resolved"
)

// CategoryInfo carries everything the pipeline needs to know about a category,
// so adding one is a single entry here instead of edits scattered across
// detectors, templates and preference checks.
type CategoryInfo struct {
	Priority       int
	DefaultEnabled bool
	ThresholdDays  int // detection threshold, 0 when not threshold-based
}

// Categories is the closed set of known notification categories.
var Categories = map[Category]CategoryInfo{
	CategoryInactivityUrgent:    {Priority: 40, DefaultEnabled: true, ThresholdDays: 14},
	CategoryInactivityGentle:    {Priority: 30, DefaultEnabled: true, ThresholdDays: 5},
	CategoryWeeklyDigest:        {Priority: 20, DefaultEnabled: true},
	CategoryMotivationalWelcome: {Priority: 10, DefaultEnabled: true},
	CategoryImmediateWelcome:    {Priority: 5, DefaultEnabled: true},
	CategorySupportReply:        {Priority: 50, DefaultEnabled: true},
}

// Known reports whether c is a registered category.
func Known(c Category) bool {
	_, ok := Categories[c]
	return ok
}

// PriorityOf returns the queue priority for a category, 0 for unknown ones.
func PriorityOf(c Category) int {
	return Categories[c].Priority
}

// AllCategories returns every registered category.
func AllCategories() []Category {
	cats := make([]Category, 0, len(Categories))
	for c := range Categories {
		cats = append(cats, c)
	}
	return cats
}
