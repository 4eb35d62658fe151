package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, department, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, passwordHash, u.Department, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapUnique(err, repository.ErrDuplicate)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var u models.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, department, role, password_hash, created_at, updated_at
		FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.Department, &u.Role, &ph, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, department, role, created_at, updated_at
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Department, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns a filtered, paginated list of users and total count.
// Filters: q (matches username, email or department, ILIKE), role (exact).
func (r *UserRepo) List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(q); s != "" {
		p := "%" + s + "%"
		args = append(args, p)
		n := itoa(len(args))
		clauses = append(clauses, "(username ILIKE $"+n+" OR email ILIKE $"+n+" OR department ILIKE $"+n+")")
	}
	if s := strings.TrimSpace(role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}

	countSQL := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(clauses, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT id, username, email, department, role, created_at, updated_at
		FROM users
		WHERE %s
		ORDER BY username ASC
		LIMIT $%d OFFSET $%d
	`, strings.Join(clauses, " AND "), len(args)-1, len(args))
	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Department, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET username=$1, email=$2, department=$3, role=$4, updated_at=now()
		WHERE id=$5
		RETURNING created_at, updated_at
	`, u.Username, u.Email, u.Department, u.Role, u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return mapUnique(err, repository.ErrDuplicate)
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the user; their tickets cascade, tickets assigned to them
// have the assignment cleared by the FK rules.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
