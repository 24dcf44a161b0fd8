// internal/record/record.go
//
// Lifecycle traits embedded by persisted models.
//
// Context
// -------
// Two small structs carry the columns every table shares:
//
//	created_at  TIMESTAMP NOT NULL   – set once on insert
//	updated_at  TIMESTAMP NOT NULL   – refreshed on every write
//	is_deleted  TINYINT(1) NOT NULL  – soft-delete flag, default 0
//	deleted_at  TIMESTAMP NULL       – when the row was soft-deleted
//
// Stores call Touch before each write and MarkDeleted / MarkRestored before
// persisting a soft delete or restore.  Rows are never removed physically
// through these traits.
//
// Scope is the explicit filter a store applies when reading: Active hides
// soft-deleted rows, All returns every row.
//
// Notes
// -----
// • Nullable timestamps are *time.Time; callers must nil-check before use.
// • Oxford commas, two spaces after periods.
package record

import "time"

// Timestamps mirrors created_at / updated_at.
type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Touch stamps a write.  CreatedAt is only set while still zero.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// SoftDelete mirrors is_deleted / deleted_at.
type SoftDelete struct {
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at"`
}

// MarkDeleted flags the record as deleted at now.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &now
}

// MarkRestored clears both soft-delete fields.
func (s *SoftDelete) MarkRestored() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

// Deleted reports the soft-delete flag.
func (s SoftDelete) Deleted() bool { return s.IsDeleted }

// Scope selects which rows a read may see.
type Scope int

const (
	// Active excludes soft-deleted rows.  It is the default.
	Active Scope = iota
	// All includes soft-deleted rows.
	All
)

func (s Scope) String() string {
	if s == All {
		return "all"
	}
	return "active"
}

// Where returns the SQL predicate for this scope.  It is always safe to AND
// with other conditions.
func (s Scope) Where() string {
	if s == All {
		return "1 = 1"
	}
	return "is_deleted = FALSE"
}

// Includes reports whether a row in state sd is visible under this scope.
func (s Scope) Includes(sd SoftDelete) bool {
	return s == All || !sd.IsDeleted
}

// Clock lets stores and tests share a time source.
type Clock func() time.Time

// Now returns the current UTC time truncated to seconds, matching the
// TIMESTAMP column precision.
func Now() time.Time { return time.Now().UTC().Truncate(time.Second) }
