package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
)

const (
	uniqueViolation = "23505"
	// raised when an id is not a valid uuid
	invalidTextRepresentation = "22P02"
	foreignKeyViolation       = "23503"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func (pgr *PostgresRepo) Ping(ctx context.Context) error {
	return pgr.pool.Ping(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify maps driver errors onto domain errors. notFound is returned for
// missing rows and malformed ids.
func classify(err error, notFound error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows), pgCode(err) == invalidTextRepresentation:
		return notFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)

	if err := row.Scan(&user.Id, &user.PasswordHash); err != nil {
		return domain.User{}, classify(err, domain.ErrUserNotFound)
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)

	if err := row.Scan(&user.Username, &user.PasswordHash); err != nil {
		return domain.User{}, classify(err, domain.ErrUserNotFound)
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id string
	if err := row.Scan(&id); err != nil {
		if pgCode(err) == uniqueViolation {
			return "", domain.ErrDuplicateUsername
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

// CreateRotationSet stores doc under userId and returns the new id.
func (pgr *PostgresRepo) CreateRotationSet(ctx context.Context, userId string, doc codec.KeyedDocument) (string, error) {
	row := pgr.pool.QueryRow(ctx,
		"INSERT INTO rotation_sets(user_id, title, players, annotations) VALUES($1, $2, $3, $4) RETURNING id",
		userId, doc.Title, doc.Players, doc.Annotations)

	var id string
	if err := row.Scan(&id); err != nil {
		switch pgCode(err) {
		case foreignKeyViolation, invalidTextRepresentation:
			return "", domain.ErrUserNotFound
		}
		return "", classify(err, domain.ErrUserNotFound)
	}
	return id, nil
}

// UpdateRotationSet overwrites a set the user owns.
func (pgr *PostgresRepo) UpdateRotationSet(ctx context.Context, userId, id string, doc codec.KeyedDocument) error {
	tag, err := pgr.pool.Exec(ctx,
		`UPDATE rotation_sets
		SET title = $3, players = $4, annotations = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, userId, doc.Title, doc.Players, doc.Annotations)
	if err != nil {
		return classify(err, domain.ErrRotationSetNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRotationSetNotFound
	}
	return nil
}

func (pgr *PostgresRepo) GetRotationSet(ctx context.Context, userId, id string) (domain.RotationSetRecord, error) {
	record := domain.RotationSetRecord{Id: id, UserId: userId}

	row := pgr.pool.QueryRow(ctx,
		`SELECT title, players, annotations, created_at, updated_at
		FROM rotation_sets WHERE id = $1 AND user_id = $2`, id, userId)

	err := row.Scan(
		&record.Document.Title,
		&record.Document.Players,
		&record.Document.Annotations,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return domain.RotationSetRecord{}, classify(err, domain.ErrRotationSetNotFound)
	}

	return record, nil
}

// ListRotationSets returns the user's sets, most recently saved first. Only
// the title of each document is loaded.
func (pgr *PostgresRepo) ListRotationSets(ctx context.Context, userId string) ([]domain.RotationSetRecord, error) {
	rows, err := pgr.pool.Query(ctx,
		`SELECT id, title, created_at, updated_at
		FROM rotation_sets WHERE user_id = $1
		ORDER BY updated_at DESC, id`, userId)
	if err != nil {
		if pgCode(err) == invalidTextRepresentation {
			return []domain.RotationSetRecord{}, nil
		}
		return nil, classify(err, domain.ErrRotationSetNotFound)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RotationSetRecord, error) {
		record := domain.RotationSetRecord{UserId: userId}
		err := row.Scan(&record.Id, &record.Document.Title, &record.CreatedAt, &record.UpdatedAt)
		return record, err
	})
	if err != nil {
		if pgCode(err) == invalidTextRepresentation {
			return []domain.RotationSetRecord{}, nil
		}
		return nil, classify(err, domain.ErrRotationSetNotFound)
	}
	return records, nil
}

func (pgr *PostgresRepo) DeleteRotationSet(ctx context.Context, userId, id string) error {
	tag, err := pgr.pool.Exec(ctx, "DELETE FROM rotation_sets WHERE id = $1 AND user_id = $2", id, userId)
	if err != nil {
		return classify(err, domain.ErrRotationSetNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRotationSetNotFound
	}
	return nil
}
