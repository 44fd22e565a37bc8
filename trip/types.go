// Package trip holds the core data types shared by every other tripkit
// package: trips, expense members and records, packing checklists and
// itinerary schedules. It has no dependency on storage or transport.
package trip

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level planning context. Its ID doubles as the join key:
// anyone holding the ID can read and write the trip's shared documents, so
// the ID is the entire access-control mechanism.
//
// The ID is a string rather than a UUID because joined trips adopt whatever
// identifier the creating device generated (a millisecond timestamp by
// default) and the ID must survive copy-paste between collaborators intact.
type Trip struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	StartDate    string   `json:"startDate"` // "2006-01-02"
	EndDate      string   `json:"endDate"`   // "2006-01-02"
	ThemeColor   string   `json:"themeColor"` // hex code
	Destinations []string `json:"destinations"`
}

// TripUpdate carries a partial update for a trip. Nil fields are left
// untouched. The ID is never updatable.
type TripUpdate struct {
	Title        *string   `json:"title,omitempty"`
	StartDate    *string   `json:"startDate,omitempty"`
	EndDate      *string   `json:"endDate,omitempty"`
	ThemeColor   *string   `json:"themeColor,omitempty"`
	Destinations *[]string `json:"destinations,omitempty"`
}

// Member is a participant in one trip's expense context.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Expense is one shared cost: who paid, how much, and which members split it.
// Amount is scoped to Currency; amounts in different currencies are never
// combined or converted.
type Expense struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Amount    float64     `json:"amount"`
	Currency  Currency    `json:"currency"`
	PaidBy    uuid.UUID   `json:"paidBy"`
	SplitWith []uuid.UUID `json:"splitWith"`
	Category  string      `json:"category"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PackingItem is one checkable entry in a packing group.
type PackingItem struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Checked bool      `json:"checked"`
}

// PackingGroup is a labelled, ordered list of packing items.
type PackingGroup struct {
	Category string        `json:"category"`
	Items    []PackingItem `json:"items"`
}

// ScheduleEvent is one itinerary entry within a day.
type ScheduleEvent struct {
	ID          uuid.UUID `json:"id"`
	Time        string    `json:"time"` // "15:04"
	Title       string    `json:"title"`
	Type        string    `json:"type"` // "transit" or "activity"
	Description string    `json:"description"`
}

// ScheduleDay groups the events of a single calendar day.
type ScheduleDay struct {
	Day    string          `json:"day"`  // "Day 1"
	Date   string          `json:"date"` // "2/27"
	Events []ScheduleEvent `json:"events"`
}

// DefaultCategories are the suggested expense category tags.
var DefaultCategories = []string{"food", "transit", "lodging", "activity", "shopping", "other"}
