package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `
	t.id, t.ticket_number, t.department, t.equipment_type, t.problem_description,
	t.issue_date, COALESCE(t.photo_url, ''), COALESCE(t.photo_key, ''),
	t.status, t.priority,
	COALESCE(t.assigned_to::text, ''), t.created_by::text, t.created_at, t.updated_at,
	COALESCE(a.username, ''), COALESCE(c.username, '')`

func scanTicket(row pgx.Row, t *models.Ticket) error {
	return row.Scan(
		&t.ID, &t.TicketNumber, &t.Department, &t.EquipmentType, &t.ProblemDescription,
		&t.IssueDate, &t.PhotoURL, &t.PhotoKey,
		&t.Status, &t.Priority,
		&t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.AssigneeName, &t.CreatorName,
	)
}

// -----------------------------------------------------------------------------
// Listing with filters + pagination + sort, assignee/creator username joins
// -----------------------------------------------------------------------------

func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildTicketWhere(f)

	// Count first, over the same filter set.
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := sanitizeSort(f.Sort, "updated_at")
	sortOrd := sanitizeOrder(f.Order, "desc")

	sql := fmt.Sprintf(`
		SELECT %s
		FROM tickets t
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN users c ON c.id = t.created_by
		%s
		ORDER BY t.%s %s
		LIMIT $%d OFFSET $%d
	`, ticketColumns, whereSQL, sortCol, sortOrd, len(args)+1, len(args)+2)

	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// -----------------------------------------------------------------------------
// Single ticket with full history
// -----------------------------------------------------------------------------

func (r *TicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := scanTicket(r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM tickets t
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN users c ON c.id = t.created_by
		WHERE t.id = $1
	`, ticketColumns), id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.ticket_id, u.user_id::text, COALESCE(us.username, ''),
		       u.update_type, COALESCE(u.old_value, ''), COALESCE(u.new_value, ''),
		       COALESCE(u.notes, ''), u.created_at
		FROM ticket_updates u
		LEFT JOIN users us ON us.id = u.user_id
		WHERE u.ticket_id = $1
		ORDER BY u.created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var upd models.TicketUpdate
		if err := rows.Scan(
			&upd.ID, &upd.TicketID, &upd.UserID, &upd.UserName,
			&upd.UpdateType, &upd.OldValue, &upd.NewValue,
			&upd.Notes, &upd.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.Updates = append(t.Updates, upd)
	}
	return &t, rows.Err()
}

// -----------------------------------------------------------------------------
// Create: year-scoped number allocation + ticket + first audit row in one tx
// -----------------------------------------------------------------------------

// Create serializes concurrent creations for the same year on the row lock
// taken by the FOR UPDATE scan of the year's highest number. The lock is
// held until commit, so no two transactions compute the same next sequence.
func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket, first *models.TicketUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	year := time.Now().Year()

	// length-before-value ordering keeps 5-digit sequences above 4-digit ones
	var last string
	err = tx.QueryRow(ctx, `
		SELECT ticket_number FROM tickets
		WHERE ticket_number LIKE $1
		ORDER BY length(ticket_number) DESC, ticket_number DESC
		LIMIT 1
		FOR UPDATE
	`, repository.YearPrefix(year)+"%").Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	t.TicketNumber = repository.NextTicketNumber(year, last)

	now := time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_number, department, equipment_type, problem_description,
		                     issue_date, photo_url, photo_key, status, priority, assigned_to,
		                     created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
		RETURNING id, created_at, updated_at
	`,
		t.TicketNumber, t.Department, t.EquipmentType, t.ProblemDescription,
		t.IssueDate, nullIfEmpty(t.PhotoURL), nullIfEmpty(t.PhotoKey),
		t.Status, t.Priority, nullIfEmpty(t.AssignedTo), t.CreatedBy, now,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return mapUnique(err, repository.ErrDuplicateNumber)
	}

	first.TicketID = t.ID
	if err := insertUpdate(ctx, tx, first); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapUnique(err, repository.ErrDuplicateNumber)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Status / assignee mutations, atomic with their audit rows
// -----------------------------------------------------------------------------

func (r *TicketRepo) SetStatus(ctx context.Context, ticketID, status string, upd *models.TicketUpdate) error {
	return r.mutate(ctx, ticketID, upd, `
		UPDATE tickets SET status=$1, updated_at=now()
		WHERE id=$2 AND status <> 'Closed'
	`, status, ticketID)
}

func (r *TicketRepo) SetAssignee(ctx context.Context, ticketID, assignee string, upd *models.TicketUpdate) error {
	return r.mutate(ctx, ticketID, upd, `
		UPDATE tickets SET assigned_to=$1, updated_at=now()
		WHERE id=$2 AND status <> 'Closed'
	`, nullIfEmpty(assignee), ticketID)
}

func (r *TicketRepo) SetPhoto(ctx context.Context, ticketID, url, key string, upd *models.TicketUpdate) error {
	return r.mutate(ctx, ticketID, upd, `
		UPDATE tickets SET photo_url=$1, photo_key=$2, updated_at=now()
		WHERE id=$3 AND status <> 'Closed'
	`, url, key, ticketID)
}

// mutate runs the guarded UPDATE and the audit insert in one transaction.
// Zero rows affected means the ticket is gone or already Closed.
func (r *TicketRepo) mutate(ctx context.Context, ticketID string, upd *models.TicketUpdate, sql string, args ...any) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticketID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrTicketClosed
	}

	if err := insertUpdate(ctx, tx, upd); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *TicketRepo) AddUpdate(ctx context.Context, upd *models.TicketUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := insertUpdate(ctx, tx, upd); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertUpdate(ctx context.Context, tx pgx.Tx, upd *models.TicketUpdate) error {
	return tx.QueryRow(ctx, `
		INSERT INTO ticket_updates (ticket_id, user_id, update_type, old_value, new_value, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`,
		upd.TicketID, upd.UserID, upd.UpdateType,
		nullIfEmpty(upd.OldValue), nullIfEmpty(upd.NewValue), nullIfEmpty(upd.Notes),
	).Scan(&upd.ID, &upd.CreatedAt)
}

// Delete removes the ticket; ticket_updates go with it via cascade.
func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Dashboard aggregates
// -----------------------------------------------------------------------------

func (r *TicketRepo) Summary(ctx context.Context) (*repository.ReportSummary, error) {
	s := &repository.ReportSummary{
		ByStatus:     map[string]int{},
		ByDepartment: map[string]int{},
		ByEquipment:  map[string]int{},
	}

	if err := r.countGroups(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`, s.ByStatus); err != nil {
		return nil, err
	}
	if err := r.countGroups(ctx, `SELECT department, COUNT(*) FROM tickets GROUP BY department`, s.ByDepartment); err != nil {
		return nil, err
	}
	if err := r.countGroups(ctx, `SELECT equipment_type, COUNT(*) FROM tickets GROUP BY equipment_type`, s.ByEquipment); err != nil {
		return nil, err
	}
	for _, n := range s.ByStatus {
		s.Total += n
	}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE priority = 'High' AND status NOT IN ('Done', 'Closed')
	`).Scan(&s.OpenHighPriority)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets WHERE created_at >= now() - INTERVAL '30 days'
	`).Scan(&s.CreatedLast30Days)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT equipment_type, department, COUNT(*) AS n
		FROM tickets
		WHERE status NOT IN ('Done', 'Closed')
		GROUP BY equipment_type, department
		HAVING COUNT(*) >= 3
		ORDER BY n DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p repository.RecurringProblem
		if err := rows.Scan(&p.EquipmentType, &p.Department, &p.OpenCount); err != nil {
			return nil, err
		}
		s.Recurring = append(s.Recurring, p)
	}
	return s, rows.Err()
}

func (r *TicketRepo) countGroups(ctx context.Context, sql string, dest map[string]int) error {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		dest[k] = n
	}
	return rows.Err()
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// buildTicketWhere composes WHERE clause and args for the filter set.
func buildTicketWhere(f repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p)
		n := itoa(len(args))
		clauses = append(clauses,
			"(t.ticket_number ILIKE $"+n+
				" OR t.problem_description ILIKE $"+n+
				" OR t.equipment_type ILIKE $"+n+
				" OR t.department ILIKE $"+n+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "t.status = $"+itoa(len(args)))
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		args = append(args, p)
		clauses = append(clauses, "t.priority = $"+itoa(len(args)))
	}
	if d := strings.TrimSpace(f.Department); d != "" {
		args = append(args, d)
		clauses = append(clauses, "t.department = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.CreatedBy); c != "" {
		args = append(args, c)
		clauses = append(clauses, "t.created_by = $"+itoa(len(args))+"::uuid")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func sanitizeSort(s, def string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created_at", "updated_at", "priority":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return def
	}
}

func sanitizeOrder(o, def string) string {
	switch strings.ToLower(strings.TrimSpace(o)) {
	case "asc", "desc":
		return strings.ToLower(strings.TrimSpace(o))
	default:
		return def
	}
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// mapUnique converts a 23505 unique violation into the given sentinel.
func mapUnique(err error, sentinel error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sentinel
	}
	return err
}

func itoa(i int) string { return strconv.Itoa(i) }
