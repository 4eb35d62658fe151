package models

import "time"

// Ticket statuses. Pending is assigned at creation; Closed is terminal:
// a closed ticket accepts no further status change, note, or deletion.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusOnHold     = "On Hold"
	StatusDone       = "Done"
	StatusClosed     = "Closed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusOnHold, StatusDone, StatusClosed:
		return true
	}
	return false
}

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Base equipment types; deployments may accept more via config.
const (
	EquipmentPC     = "PC"
	EquipmentLaptop = "Laptop"
	EquipmentOther  = "Other"
)

type Ticket struct {
	ID                 string         `json:"id"`
	TicketNumber       string         `json:"ticketNumber"`
	Department         string         `json:"department"`
	EquipmentType      string         `json:"equipmentType"`
	ProblemDescription string         `json:"problemDescription"`
	IssueDate          time.Time      `json:"issueDate"`
	PhotoURL           string         `json:"photoUrl,omitempty"`
	PhotoKey           string         `json:"-"`
	Status             string         `json:"status"`
	Priority           string         `json:"priority"`
	AssignedTo         string         `json:"assignedTo,omitempty"`
	AssigneeName       string         `json:"assigneeName,omitempty"`
	CreatedBy          string         `json:"createdBy"`
	CreatorName        string         `json:"creatorName,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Updates            []TicketUpdate `json:"updates,omitempty"`
}

func (t *Ticket) Closed() bool { return t.Status == StatusClosed }

// TicketUpdate kinds.
const (
	UpdateStatusChange = "status_change"
	UpdateNote         = "note"
	UpdateAssignment   = "assignment"
)

// TicketUpdate is one append-only audit-log entry; a ticket's ordered
// updates are its full history.
type TicketUpdate struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	UpdateType string    `json:"updateType"`
	OldValue   string    `json:"oldValue,omitempty"`
	NewValue   string    `json:"newValue,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
