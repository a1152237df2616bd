package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"consult-broker/internal/model"
)

const uniqueViolation = "23505"

const accountCols = `id, role, email, name, password_hash,
	specialization, experience, clinic_location, rating, created_at`

func scanAccount(row pgx.Row, a *model.Account) error {
	var role string
	err := row.Scan(&a.ID, &role, &a.Email, &a.Name, &a.PasswordHash,
		&a.Profile.Specialization, &a.Profile.Experience, &a.Profile.ClinicLocation,
		&a.Profile.Rating, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	a.Role = model.Role(role)
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, a *model.Account) error {
	p := a.Profile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (role, email, name, password_hash,
		                       specialization, experience, clinic_location, rating)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, created_at`,
		string(a.Role), a.Email, a.Name, a.PasswordHash,
		p.Specialization, p.Experience, p.ClinicLocation, p.Rating,
	).Scan(&a.ID, &a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *Store) AccountByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	a := &model.Account{}
	err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE role = $1 AND lower(email) = lower($2)`,
		string(role), email), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	a := &model.Account{}
	if err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id), a); err != nil {
		return nil, err
	}
	return a, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ListWorkers(ctx context.Context, f model.WorkerFilter) ([]model.Account, error) {
	q := `SELECT ` + accountCols + ` FROM accounts WHERE role = 'worker'`
	var args []any
	if f.Specialization != "" {
		args = append(args, f.Specialization)
		q += ` AND lower(specialization) = lower($1)`
	}
	if f.Query != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Query)+"%")
		p := "$" + strconv.Itoa(len(args))
		q += ` AND (name ILIKE ` + p + ` OR specialization ILIKE ` + p + ` OR clinic_location ILIKE ` + p + `)`
	}
	if f.Ranked() {
		q += ` ORDER BY rating DESC, name, id`
	} else {
		q += ` ORDER BY name, id`
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Specializations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT specialization FROM accounts
		 WHERE role = 'worker' AND specialization <> '' ORDER BY specialization`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
