package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store/migrations"
)

const userColumns = `id, username, email, password, role, avatar_public_id, avatar_url, created_at, updated_at`

// PostgresStore handles user CRUD against PostgreSQL. Projects and comments
// stay in MongoDB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens a pool and pings it.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, role, avatar_public_id, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.Password, u.Role, u.Avatar.PublicID, u.Avatar.URL,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapPgErr("create user", err)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "get user by username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUsersByIDs returns the users that exist among ids, in no particular
// order. Malformed ids are skipped.
func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, mapPgErr("get users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := scanUser(row, &u)
		return u, err
	})
	if err != nil {
		return nil, mapPgErr("get users", err)
	}
	return users, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.exec(ctx, "update password", `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (s *PostgresStore) UpdateUsername(ctx context.Context, id, username string) error {
	return s.exec(ctx, "update username", `UPDATE users SET username = $2, updated_at = NOW() WHERE id = $1`, id, username)
}

func (s *PostgresStore) UpdateAvatar(ctx context.Context, id string, img models.Image) error {
	return s.exec(ctx, "update avatar",
		`UPDATE users SET avatar_public_id = $2, avatar_url = $3, updated_at = NOW() WHERE id = $1`,
		id, img.PublicID, img.URL)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	return s.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) findUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	var u models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, arg), &u); err != nil {
		return nil, mapPgErr(op, err)
	}
	return &u, nil
}

func (s *PostgresStore) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role,
		&u.Avatar.PublicID, &u.Avatar.URL, &u.CreatedAt, &u.UpdatedAt)
}

// mapPgErr translates pgx errors into store sentinels. A malformed uuid is
// reported as not found, like a malformed ObjectID in the mongo store.
func mapPgErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case "22P02":
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
