// internal/users/store.go
//
// `users` table query helpers.
//
// Context
// -------
// Every read takes an explicit record.Scope.  The two named entry points,
// ActiveRecords and AllRecords, return pagination sources bound to
// record.Active and record.All respectively, so list endpoints never forget
// the soft-delete filter and admin tooling can still see everything.
//
// Writes are whole-row read-modify-write: callers load a User, mutate it
// through its trait methods, and save persists every mutable column with a
// fresh updated_at.  There is no explicit transaction, so concurrent writers
// to the same row resolve as last write wins.
//
// Workflow
// --------
//  1. Callers supply a *sqlx.DB connected to the service database.
//  2. Each helper runs one parameterised statement (save runs one UPDATE).
//  3. sql.ErrNoRows becomes apperr.NotFound; MySQL 1062 on insert becomes
//     a field error on "email"; everything else is wrapped and returned.
//
// Notes
// -----
// • Column list matches the fields in User; update both together.
// • Oxford commas, two spaces after periods.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/pagination"
	"github.com/yanizio/apikit/internal/record"
	"github.com/yanizio/apikit/internal/validation"
)

const columns = `id, email, password_hash, first_name, last_name, is_active,
       is_staff, is_superuser, date_joined, last_login, is_deleted,
       deleted_at, created_at, updated_at`

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// InvalidCredentials is the single message for any failed login so callers
// cannot probe which half was wrong.
const InvalidCredentials = "Invalid email, phone number, or password."

// Store reads and writes users.
type Store struct {
	db  *sqlx.DB
	now record.Clock
}

// NewStore returns a Store using record.Now as its clock.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: record.Now}
}

// WithClock swaps the time source.  Intended for tests.
func (s *Store) WithClock(c record.Clock) *Store {
	s.now = c
	return s
}

/*──────────────────────────── scoped sources ──────────────────────────────*/

type scoped struct {
	store *Store
	scope record.Scope
}

// ActiveRecords excludes soft-deleted users.
func (s *Store) ActiveRecords() pagination.Source[User] { return scoped{s, record.Active} }

// AllRecords includes soft-deleted users.
func (s *Store) AllRecords() pagination.Source[User] { return scoped{s, record.All} }

// Records returns the source for an arbitrary scope.
func (s *Store) Records(scope record.Scope) pagination.Source[User] { return scoped{s, scope} }

func (q scoped) Count(ctx context.Context) (int, error) {
	var n int
	err := q.store.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE `+q.scope.Where())
	if err != nil {
		return 0, fmt.Errorf("count users (%s): %w", q.scope, err)
	}
	return n, nil
}

func (q scoped) Slice(ctx context.Context, offset, limit int) ([]User, error) {
	query := `SELECT ` + columns + `
        FROM   users
        WHERE  ` + q.scope.Where() + `
        ORDER  BY id
        LIMIT  ? OFFSET ?`
	rows := make([]User, 0, limit)
	if err := q.store.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list users (%s): %w", q.scope, err)
	}
	return rows, nil
}

/*──────────────────────────────── reads ───────────────────────────────────*/

// Get fetches one user by id within scope.
func (s *Store) Get(ctx context.Context, scope record.Scope, id int64) (*User, error) {
	query := `SELECT ` + columns + `
        FROM   users
        WHERE  id = ? AND ` + scope.Where() + `
        LIMIT  1`
	var u User
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// ByEmail fetches one user by (normalized) email within scope.
func (s *Store) ByEmail(ctx context.Context, scope record.Scope, email string) (*User, error) {
	email = NormalizeEmail(email)
	query := `SELECT ` + columns + `
        FROM   users
        WHERE  email = ? AND ` + scope.Where() + `
        LIMIT  1`
	var u User
	if err := s.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User", email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

/*──────────────────────────────── writes ──────────────────────────────────*/

// Create inserts an active user with a hashed password.
func (s *Store) Create(ctx context.Context, in NewUser) (*User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, validation.Field("email", "The Email must be set.")
	}

	now := s.now()
	u := User{
		Email:       email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		IsActive:    true,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
		DateJoined:  now,
	}
	u.Touch(now)
	if err := u.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	const q = `
        INSERT INTO users (email, password_hash, first_name, last_name,
                           is_active, is_staff, is_superuser, date_joined,
                           is_deleted, deleted_at, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.IsStaff, u.IsSuperuser, u.DateJoined,
		u.IsDeleted, u.DeletedAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return nil, apperr.Validation("", map[string][]string{
				"email": {"A user with that email already exists."},
			})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return &u, nil
}

// CreateSuperuser creates a staff superuser.
func (s *Store) CreateSuperuser(ctx context.Context, in NewUser) (*User, error) {
	in.IsSuperuser = true
	in.IsStaff = true
	return s.Create(ctx, in)
}

// save persists every mutable column of u and refreshes updated_at.
func (s *Store) save(ctx context.Context, u *User) error {
	u.Touch(s.now())
	const q = `
        UPDATE users
           SET email = ?, password_hash = ?, first_name = ?, last_name = ?,
               is_active = ?, is_staff = ?, is_superuser = ?, last_login = ?,
               is_deleted = ?, deleted_at = ?, updated_at = ?
         WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.IsStaff, u.IsSuperuser, u.LastLogin,
		u.IsDeleted, u.DeletedAt, u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.ID, err)
	}
	return nil
}

// SoftDelete marks an active user deleted.  The row stays in the table.
func (s *Store) SoftDelete(ctx context.Context, id int64) (*User, error) {
	u, err := s.Get(ctx, record.Active, id)
	if err != nil {
		return nil, err
	}
	u.MarkDeleted(s.now())
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Restore clears the soft-delete flag of any user, deleted or not.
func (s *Store) Restore(ctx context.Context, id int64) (*User, error) {
	u, err := s.Get(ctx, record.All, id)
	if err != nil {
		return nil, err
	}
	u.MarkRestored()
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies old, checks the new password's strength, and saves.
func (s *Store) ChangePassword(ctx context.Context, id int64, old, next string) error {
	u, err := s.Get(ctx, record.Active, id)
	if err != nil {
		return err
	}
	if !u.CheckPassword(old) {
		return validation.Field("old_password", "Old password is incorrect.")
	}
	if err := validation.PasswordStrength(next, validation.MinPasswordLength); err != nil {
		return validation.Field("new_password", validation.Messages(err)...)
	}
	if err := u.SetPassword(next); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.save(ctx, u)
}

// Authenticate checks credentials against all users, deleted ones included.
// Any mismatch yields the same validation error.  A correct password for a
// deleted or inactive account is Unauthorized and leaves the row untouched.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.ByEmail(ctx, record.All, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, invalidCredentials()
	}
	if u.Deleted() || !u.IsActive {
		return nil, apperr.Unauthorized(auth.DisabledMessage)
	}

	now := s.now()
	u.LastLogin = &now
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Principal is an auth.Lookup: it reloads an active user's current rights.
func (s *Store) Principal(ctx context.Context, id int64) (auth.Principal, bool, error) {
	u, err := s.Get(ctx, record.Active, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return auth.Principal{}, false, nil
		}
		return auth.Principal{}, false, err
	}
	if !u.IsActive {
		return auth.Principal{}, false, nil
	}
	return principalOf(u), true, nil
}

func principalOf(u *User) auth.Principal {
	return auth.Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Staff:     u.IsStaff,
		Superuser: u.IsSuperuser,
	}
}

func invalidCredentials() error {
	return apperr.Validation(InvalidCredentials, map[string][]string{
		"non_field_errors": {InvalidCredentials},
	})
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
