package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoAdmin is returned by stores for an unknown name. Login turns it into
// an auth error.
var ErrNoAdmin = errors.New("admin not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) FindAdmin(ctx context.Context, name string) (Credential, error) {
	var c Credential
	err := r.DB.QueryRow(ctx, `SELECT id, name, password_hash FROM admin_user WHERE name = $1`, name).
		Scan(&c.ID, &c.Name, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrNoAdmin
	}
	return c, err
}

// SaveAdmin creates the admin or replaces its password hash.
func (r *Repo) SaveAdmin(ctx context.Context, name, passwordHash string) (Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx, `
		INSERT INTO admin_user (name, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, name
	`, name, passwordHash).Scan(&a.ID, &a.Name)
	return a, err
}

var _ Store = (*Repo)(nil)
