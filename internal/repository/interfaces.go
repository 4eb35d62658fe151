package repository

import (
	"context"
	"errors"

	"github.com/Almer24/it-ticketing-system/internal/models"
)

var (
	// ErrNotFound: the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTicketClosed: mutation attempted against a Closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")
	// ErrDuplicateNumber: unique violation on ticket_number at commit.
	// The whole creation request is safe to resubmit.
	ErrDuplicateNumber = errors.New("duplicate ticket number, please retry")
	// ErrDuplicate: unique violation on username/email.
	ErrDuplicate = errors.New("username or email already in use")
)

type TicketRepository interface {
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, int, error)
	// Get returns the ticket with its full ordered history, or nil when absent.
	Get(ctx context.Context, id string) (*models.Ticket, error)
	// Create allocates the ticket number and inserts the ticket together
	// with its initial audit row in one transaction.
	Create(ctx context.Context, t *models.Ticket, first *models.TicketUpdate) error
	// SetStatus updates the status and appends the audit row atomically.
	SetStatus(ctx context.Context, ticketID, status string, upd *models.TicketUpdate) error
	// SetAssignee updates assigned_to (empty clears) and appends the audit row.
	SetAssignee(ctx context.Context, ticketID, assignee string, upd *models.TicketUpdate) error
	// SetPhoto records the uploaded photo reference and appends the audit row.
	SetPhoto(ctx context.Context, ticketID, url, key string, upd *models.TicketUpdate) error
	AddUpdate(ctx context.Context, upd *models.TicketUpdate) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*ReportSummary, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, string /*passwordHash*/, error)
	List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error)
	Update(ctx context.Context, u *models.User) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// ReportSummary is the dashboard aggregate payload.
type ReportSummary struct {
	Total             int                `json:"total"`
	ByStatus          map[string]int     `json:"byStatus"`
	ByDepartment      map[string]int     `json:"byDepartment"`
	ByEquipment       map[string]int     `json:"byEquipment"`
	OpenHighPriority  int                `json:"openHighPriority"`
	CreatedLast30Days int                `json:"createdLast30d"`
	Recurring         []RecurringProblem `json:"recurring"`
}

// RecurringProblem flags equipment/department pairs with repeated open tickets.
type RecurringProblem struct {
	EquipmentType string `json:"equipmentType"`
	Department    string `json:"department"`
	OpenCount     int    `json:"openCount"`
}
