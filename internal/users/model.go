// internal/users/model.go
//
// `users` table row model.
//
// Schema reference
//
//	CREATE TABLE users (
//	    id            BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    email         VARCHAR(254) NOT NULL UNIQUE,
//	    password_hash VARCHAR(128) NOT NULL,
//	    first_name    VARCHAR(150) NOT NULL DEFAULT '',
//	    last_name     VARCHAR(150) NOT NULL DEFAULT '',
//	    is_active     TINYINT(1)   NOT NULL DEFAULT 1,
//	    is_staff      TINYINT(1)   NOT NULL DEFAULT 0,
//	    is_superuser  TINYINT(1)   NOT NULL DEFAULT 0,
//	    date_joined   TIMESTAMP    NOT NULL,
//	    last_login    TIMESTAMP NULL,
//	    is_deleted    TINYINT(1)   NOT NULL DEFAULT 0,
//	    deleted_at    TIMESTAMP NULL,
//	    created_at    TIMESTAMP    NOT NULL,
//	    updated_at    TIMESTAMP    NOT NULL
//	);
//
// Notes
// -----
// • The email is the username; it is stored lower-cased.
// • PasswordHash is bcrypt and never serialized.  Handlers expose
//   PublicUser instead of User.
package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/apikit/internal/record"
)

// User mirrors one row in the `users` table.
type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	IsActive     bool       `db:"is_active"`
	IsStaff      bool       `db:"is_staff"`
	IsSuperuser  bool       `db:"is_superuser"`
	DateJoined   time.Time  `db:"date_joined"`
	LastLogin    *time.Time `db:"last_login"`
	record.Timestamps
	record.SoftDelete
}

// FullName and ShortName both return the email; names are optional.
func (u *User) FullName() string  { return u.Email }
func (u *User) ShortName() string { return u.Email }

// SetPassword replaces the stored hash.
func (u *User) SetPassword(pw string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(h)
	return nil
}

// CheckPassword reports whether pw matches the stored hash.
func (u *User) CheckPassword(pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) == nil
}

// PublicUser is the serialized form returned by the API.
type PublicUser struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	IsActive   bool       `json:"is_active"`
	IsStaff    bool       `json:"is_staff"`
	DateJoined time.Time  `json:"date_joined"`
	IsDeleted  bool       `json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Public converts a row into its API form.
func Public(u User) PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		IsStaff:    u.IsStaff,
		DateJoined: u.DateJoined,
		IsDeleted:  u.IsDeleted,
		DeletedAt:  u.DeletedAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NewUser is the input to Store.Create.
type NewUser struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
}
