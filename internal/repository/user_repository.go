package repository

import (
	"context"
	"errors"

	"pocket-signal-pro/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository persists the durable copy of the in-memory user table. The
// store writes through it after every mutation and reads it back once at
// startup.
type UserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewUserRepository(pool PgxPool, tracer trace.Tracer) *UserRepository {
	return &UserRepository{pool: pool, tracer: tracer}
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.UserRecord) error {
	_, span := r.tracer.Start(ctx, "user-repo.save-user")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO bot_users (chat_id, display_name, state, submitted_reference, first_seen_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (chat_id) DO UPDATE SET
		     display_name = EXCLUDED.display_name,
		     state = EXCLUDED.state,
		     submitted_reference = EXCLUDED.submitted_reference`,
		user.ID, user.DisplayName, string(user.State), user.SubmittedReference, user.FirstSeenAt,
	)
	return err
}

func (r *UserRepository) GetUser(ctx context.Context, chatID int64) (*domain.UserRecord, error) {
	_, span := r.tracer.Start(ctx, "user-repo.get-user")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT chat_id, display_name, state, submitted_reference, first_seen_at
		 FROM bot_users
		 WHERE chat_id = $1`,
		chatID,
	)

	var u domain.UserRecord
	var state string
	err := row.Scan(&u.ID, &u.DisplayName, &state, &u.SubmittedReference, &u.FirstSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.State = domain.VerificationState(state)
	return &u, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	_, span := r.tracer.Start(ctx, "user-repo.list-users")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT chat_id, display_name, state, submitted_reference, first_seen_at
		 FROM bot_users
		 ORDER BY first_seen_at ASC, chat_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserRecord
	for rows.Next() {
		var u domain.UserRecord
		var state string
		if err := rows.Scan(&u.ID, &u.DisplayName, &state, &u.SubmittedReference, &u.FirstSeenAt); err != nil {
			return nil, err
		}
		u.State = domain.VerificationState(state)
		users = append(users, u)
	}
	return users, rows.Err()
}
