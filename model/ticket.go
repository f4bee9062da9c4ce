package model

import (
	"fmt"
	"time"
)

// TicketStatus defines the possible states of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"        // Filed by a user, not yet picked up
	TicketInProgress TicketStatus = "IN_PROGRESS" // Assigned to or being worked by an admin
	TicketResolved   TicketStatus = "RESOLVED"    // Admin considers the issue fixed
	TicketClosed     TicketStatus = "CLOSED"      // Terminal
)

// TicketCategory classifies what a ticket is about.
type TicketCategory string

const (
	CategoryPayment     TicketCategory = "PAYMENT"
	CategoryCourse      TicketCategory = "COURSE"
	CategoryCertificate TicketCategory = "CERTIFICATE"
	CategoryAccount     TicketCategory = "ACCOUNT"
	CategoryOther       TicketCategory = "OTHER"
)

var validCategories = map[TicketCategory]bool{
	CategoryPayment:     true,
	CategoryCourse:      true,
	CategoryCertificate: true,
	CategoryAccount:     true,
	CategoryOther:       true,
}

// ticketTransitions lists, per source status, the statuses it may move to.
// Closed has no entry: nothing leaves Closed.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketResolved},
	TicketInProgress: {TicketResolved, TicketOpen},
	TicketResolved:   {TicketInProgress, TicketClosed},
}

// AllTicketStatuses returns every status in lifecycle order.
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{TicketOpen, TicketInProgress, TicketResolved, TicketClosed}
}

// ParseTicketStatus validates external input.
func ParseTicketStatus(s string) (TicketStatus, error) {
	st := TicketStatus(s)
	switch st {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown ticket status '%s'", s)
}

// ParseTicketCategory validates external input.
func ParseTicketCategory(s string) (TicketCategory, error) {
	c := TicketCategory(s)
	if !validCategories[c] {
		return "", fmt.Errorf("unknown ticket category '%s'", s)
	}
	return c, nil
}

// CanTransition reports whether a ticket may move from one status to another.
func (from TicketStatus) CanTransition(to TicketStatus) bool {
	for _, allowed := range ticketTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SupportTicket is a user-filed issue tracked through the status lifecycle.
type SupportTicket struct {
	ObjectType  string         `json:"objectType"`
	ID          uint64         `json:"id"`
	User        string         `json:"user"`
	Admin       string         `json:"admin,omitempty" metadata:",optional"` // Empty until assigned
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Category    TicketCategory `json:"category"`
	Status      TicketStatus   `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	ClosedAt    time.Time      `json:"closedAt" metadata:",optional"`        // Zero until set once, on entry to Closed
}
