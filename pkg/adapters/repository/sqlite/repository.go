package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                              // Local SQLite driver

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db   *sql.DB
	q    querier
	inTx bool
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	dsn := dbURL
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	} else {
		dsn = localDSN(dbURL)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// One connection serializes writers; _txlock=immediate makes each
		// transaction take the write lock when it begins.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, q: db}, nil
}

// localDSN appends the pragmas the store relies on to a modernc DSN.
func localDSN(dbURL string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if !strings.Contains(dbURL, ":memory:") && !strings.Contains(dbURL, "mode=memory") {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + strings.Join(params, "&")
}

func (r *SQLiteRepository) Close() error {
	if r.inTx {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx ports.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&SQLiteRepository{db: r.db, q: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE id = ?`
	return r.scanUser(r.q.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE username = ?`
	return r.scanUser(r.q.QueryRowContext(ctx, query, username))
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, username, is_admin, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = 1`).Scan(&count)
	return count, err
}

// returningUser reads the single row of a DELETE/UPDATE ... RETURNING.
func (r *SQLiteRepository) returningUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var u domain.User
	if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, timestamp{&u.CreatedAt}); err != nil {
		return nil, err
	}
	return &u, rows.Err()
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	query := `DELETE FROM users
			  WHERE id = ?
			    AND (is_admin = 0 OR (SELECT COUNT(*) FROM users WHERE is_admin = 1) > 1)
			  RETURNING id, username, is_admin, created_at`
	return r.returningUser(ctx, query, id)
}

func (r *SQLiteRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error) {
	query := `UPDATE users SET is_admin = ?
			  WHERE id = ?
			    AND (? = 1 OR is_admin = 0 OR (SELECT COUNT(*) FROM users WHERE is_admin = 1) > 1)
			  RETURNING id, username, is_admin, created_at`
	return r.returningUser(ctx, query, isAdmin, id, isAdmin)
}

// --- Links ---

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (name, url, user_id, is_public, created_at) VALUES (?, ?, ?, ?, ?)`

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx, query, link.Name, link.URL, link.UserID, link.IsPublic, link.CreatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetLink(ctx context.Context, id, userID int64) (*domain.Link, error) {
	query := `SELECT id, name, url, user_id, is_public, created_at FROM links WHERE id = ? AND user_id = ?`

	var l domain.Link
	err := r.q.QueryRowContext(ctx, query, id, userID).Scan(&l.ID, &l.Name, &l.URL, &l.UserID, &l.IsPublic, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) queryLinks(ctx context.Context, query string, args ...any) ([]domain.Link, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.Name, &l.URL, &l.UserID, &l.IsPublic, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, userID int64) ([]domain.Link, error) {
	query := `SELECT id, name, url, user_id, is_public, created_at FROM links WHERE user_id = ? ORDER BY id DESC`
	return r.queryLinks(ctx, query, userID)
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	return r.queryLinks(ctx, `SELECT id, name, url, user_id, is_public, created_at FROM links ORDER BY id`)
}

func (r *SQLiteRepository) ListPublicLinks(ctx context.Context) ([]domain.PublicLink, error) {
	query := `SELECT l.id, l.name, l.url, l.user_id, COALESCE(u.username, '')
			  FROM links l
			  LEFT JOIN users u ON l.user_id = u.id
			  WHERE l.is_public = 1
			  ORDER BY l.id DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.PublicLink{}
	for rows.Next() {
		var l domain.PublicLink
		if err := rows.Scan(&l.ID, &l.Name, &l.URL, &l.UserID, &l.SharedBy); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// returningLinks reads the rows of a DELETE ... RETURNING on links.
func (r *SQLiteRepository) returningLinks(ctx context.Context, query string, args ...any) ([]domain.Link, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.Name, &l.URL, &l.UserID, &l.IsPublic, timestamp{&l.CreatedAt}); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) DeleteLink(ctx context.Context, id, userID int64) (*domain.Link, error) {
	query := `DELETE FROM links WHERE id = ? AND user_id = ? RETURNING id, name, url, user_id, is_public, created_at`
	links, err := r.returningLinks(ctx, query, id, userID)
	if err != nil || len(links) == 0 {
		return nil, err
	}
	return &links[0], nil
}

func (r *SQLiteRepository) DeleteLinksByUser(ctx context.Context, userID int64) ([]domain.Link, error) {
	query := `DELETE FROM links WHERE user_id = ? RETURNING id, name, url, user_id, is_public, created_at`
	return r.returningLinks(ctx, query, userID)
}

// --- Activities ---

func (r *SQLiteRepository) RecordActivity(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO activities (user_id, action, details, created_at) VALUES (?, ?, ?, ?)`

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx, query, a.UserID, string(a.Action), a.Details, a.CreatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// whereActivities renders filter as a WHERE clause on the activities
// table, aliased as alias.
func whereActivities(filter domain.ActivityFilter, alias string) (string, []any) {
	if filter.UserID == 0 {
		return "", nil
	}
	return " WHERE " + alias + "user_id = ?", []any{filter.UserID}
}

func (r *SQLiteRepository) ListActivities(ctx context.Context, filter domain.ActivityFilter, limit int) ([]domain.Activity, error) {
	where, args := whereActivities(filter, "a.")
	query := `SELECT a.id, a.user_id, u.username, a.action, COALESCE(a.details, ''), a.created_at
			  FROM activities a
			  LEFT JOIN users u ON a.user_id = u.id` + where + `
			  ORDER BY a.created_at DESC, a.id DESC
			  LIMIT ?`
	args = append(args, limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		var username sql.NullString
		var action string
		if err := rows.Scan(&a.ID, &a.UserID, &username, &action, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if username.Valid {
			a.Username = &username.String
		}
		a.Action = domain.ActionKind(action)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *SQLiteRepository) CountActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error) {
	where, args := whereActivities(filter, "")
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`+where, args...).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) DeleteActivities(ctx context.Context, filter domain.ActivityFilter) (int64, error) {
	where, args := whereActivities(filter, "")
	res, err := r.q.ExecContext(ctx, `DELETE FROM activities`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ensure interface compliance
var _ ports.Repository = (*SQLiteRepository)(nil)
