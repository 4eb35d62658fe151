package repository

type TicketFilter struct {
	Q          string // free text over ticket_number/problem_description/equipment_type/department
	Status     string
	Priority   string
	Department string
	CreatedBy  string // forced to the caller's id for non-admin callers
	Limit      int
	Offset     int
	Sort       string // created_at, updated_at, priority
	Order      string // asc|desc
}
