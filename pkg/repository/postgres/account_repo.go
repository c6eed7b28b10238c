package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turuapp/backend/pkg/account"
)

// AccountRepository implements account.Repository backed by PostgreSQL (pgx).
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) (*AccountRepository, error) {
	repo := &AccountRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *AccountRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			gender TEXT NOT NULL DEFAULT '',
			birth_date DATE,
			profile_picture_url TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE
		);
	`)
	return err
}

const accountColumns = `id, username, password_hash, gender, birth_date, profile_picture_url, active`

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, gender, birth_date, profile_picture_url, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, acc.Username, acc.PasswordHash, acc.Gender, acc.BirthDate, acc.ProfilePictureURL, acc.Active)
	if err := row.Scan(&acc.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return account.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (account.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id))
}

// FindByUsername matches exactly; usernames are case-sensitive so no folding
// happens on either side.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (account.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE username = $1
	`, username))
}

func (r *AccountRepository) Update(ctx context.Context, acc account.Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET username = $2, password_hash = $3, gender = $4, birth_date = $5,
		    profile_picture_url = $6, active = $7
		WHERE id = $1
	`, acc.ID, acc.Username, acc.PasswordHash, acc.Gender, acc.BirthDate, acc.ProfilePictureURL, acc.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return account.ErrUsernameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (account.Account, error) {
	var acc account.Account
	err := row.Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Gender,
		&acc.BirthDate, &acc.ProfilePictureURL, &acc.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	return acc, nil
}
