package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contacts-api/internal/domain"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

const uniqueViolationCode = "23505"

// UserRepository defines persistence access for accounts.
//
// Lookup methods return pgx.ErrNoRows when no user matches; callers decide
// what absence means. Targeted update methods return pgx.ErrNoRows when the
// update matched no row.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateSessionToken(ctx context.Context, id string, token *string) error
	UpdateSubscription(ctx context.Context, id string, tier domain.Subscription) (*domain.User, error)
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, subscription, session_token, verified, verification_token, avatar_url, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, subscription, verification_token, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Subscription,
		user.VerificationToken,
		user.AvatarURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// The unique constraint is the real duplicate-email guard; the
		// service-layer pre-check is only a best-effort early rejection.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.NewEmailInUse(user.Email)
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE verification_token=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, token))
}

// MarkVerified flips the verified flag and clears the verification token in a
// single atomic write, keeping the verified/token invariant.
func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET verified=TRUE, verification_token=NULL, updated_at=NOW()
        WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *userRepository) UpdateSessionToken(ctx context.Context, id string, token *string) error {
	const query = `UPDATE users SET session_token=$1, updated_at=NOW() WHERE id=$2`
	return r.exec(ctx, query, token, id)
}

func (r *userRepository) UpdateSubscription(ctx context.Context, id string, tier domain.Subscription) (*domain.User, error) {
	const query = `
        UPDATE users SET subscription=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, tier, id))
}

func (r *userRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	const query = `UPDATE users SET avatar_url=$1, updated_at=NOW() WHERE id=$2`
	return r.exec(ctx, query, avatarURL, id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	return r.exec(ctx, query, passwordHash, id)
}

func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Subscription,
		&user.SessionToken,
		&user.Verified,
		&user.VerificationToken,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
