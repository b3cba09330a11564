package model

import "time"

// MaxBookingsPerMonth is the number of weekend days a member may request in one month
const MaxBookingsPerMonth = 2

// TeamMember represents a member of the duty team
type TeamMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Priority  int    `json:"priority"` // Lower value wins conflicts
	Color     string `json:"color"`
	IsActive  bool   `json:"isActive"`
	Email     string `json:"-"`
	AccessKey string `json:"-"`
}

// Booking represents a member's request to be on duty for a weekend day
type Booking struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`  // Format: YYYY-MM-DD
	Month        string    `json:"month"` // Format: YYYY-MM
	IsConfirmed  bool      `json:"isConfirmed"`
	IsConflicted bool      `json:"isConflicted"`
	Seq          int64     `json:"-"` // Insertion order, assigned by the store
	CreatedAt    time.Time `json:"createdAt"`
}

// FinalScheduleEntry is the resolved assignee for a single date
type FinalScheduleEntry struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	AssignedTo string `json:"assignedTo"`
	Month      string `json:"month"`
}

// ConflictResolution describes how a contested date was decided
type ConflictResolution struct {
	Date   string   `json:"date"`
	Winner string   `json:"winner"`
	Losers []string `json:"losers"`
}

// UserBookingStatus summarises one member's bookings for a month
type UserBookingStatus struct {
	UserID         string    `json:"userId"`
	ConfirmedDays  int       `json:"confirmedDays"`
	ConflictedDays int       `json:"conflictedDays"`
	RemainingDays  int       `json:"remainingDays"`
	Bookings       []Booking `json:"bookings"`
}

// MonthlySchedule is the complete view of a month consumed by clients
type MonthlySchedule struct {
	Month        string               `json:"month"`
	Assignments  map[string]string    `json:"assignments"`
	Conflicts    []ConflictResolution `json:"conflicts"`
	UserStatuses []UserBookingStatus  `json:"userStatuses"`
}

// ScheduleExport is a read-only snapshot of a month
type ScheduleExport struct {
	Month        string               `json:"month"`
	TeamMembers  []TeamMember         `json:"teamMembers"`
	Schedule     map[string]string    `json:"schedule"`
	Conflicts    []ConflictResolution `json:"conflicts"`
	UserStatuses []UserBookingStatus  `json:"userStatuses"`
	ExportedAt   string               `json:"exportedAt"`
}

type TicketPriority string

const (
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
	TicketPriorityP3 TicketPriority = "P3"
	TicketPriorityP4 TicketPriority = "P4"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusEscalated  TicketStatus = "escalated"
)

// Ticket is a log entry of support tickets handled on a duty day
type Ticket struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	TicketIDs []string       `json:"ticketIds"`
	Priority  TicketPriority `json:"priority"`
	Status    TicketStatus   `json:"status"`
	Notes     string         `json:"notes"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
