package store

import (
	"database/sql"
	"fmt"

	"github.com/lherron/sitemerge/internal/domain"
)

// UserStore handles user persistence operations.
type UserStore struct {
	store *Store
}

// User is a destination user row.
type User struct {
	ID          int64
	Login       string
	Email       string
	Nicename    string
	DisplayName string
	FirstName   string
	LastName    string
	Registered  string
	Role        string
}

// UserCreateParams contains parameters for creating a new user.
type UserCreateParams struct {
	Login       string
	Email       string
	Nicename    string
	DisplayName string
	FirstName   string
	LastName    string
	Registered  string
	Role        string
}

// Create inserts a new user and returns its destination ID.
func (us *UserStore) Create(params UserCreateParams) (int64, error) {
	return us.create(us.store.db, params)
}

// CreateWithMeta inserts a user and its metadata in one transaction: a
// failure on any key leaves no trace of the record.
func (us *UserStore) CreateWithMeta(params UserCreateParams, meta []MetaEntry) (int64, error) {
	var id int64
	err := us.store.withTx(func(tx *sql.Tx) error {
		var err error
		id, err = us.create(tx, params)
		if err != nil {
			return err
		}
		for _, m := range meta {
			if err := addMeta(tx, "usermeta", "user_id", id, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (us *UserStore) create(e execer, params UserCreateParams) (int64, error) {
	if err := domain.ValidateEmail(params.Email); err != nil {
		return 0, err
	}
	if params.Login == "" {
		return 0, fmt.Errorf("login cannot be empty")
	}
	role := params.Role
	if role == "" {
		role = "subscriber"
	}

	res, err := e.Exec(`
		INSERT INTO users (login, email, nicename, display_name, first_name, last_name, registered, role)
		VALUES (?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), strftime('%Y-%m-%d %H:%M:%S','now')), ?)
	`, params.Login, params.Email, params.Nicename, params.DisplayName,
		params.FirstName, params.LastName, params.Registered, role)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user ID: %w", err)
	}
	return id, nil
}

// GetByEmail finds a user by email. Returns (nil, nil) when absent.
func (us *UserStore) GetByEmail(email string) (*User, error) {
	return us.getWhere("email = ?", email)
}

// GetByLogin finds a user by login. Returns (nil, nil) when absent.
func (us *UserStore) GetByLogin(login string) (*User, error) {
	return us.getWhere("login = ?", login)
}

// GetByID retrieves a user by destination ID. Returns (nil, nil) when absent.
func (us *UserStore) GetByID(id int64) (*User, error) {
	return us.getWhere("id = ?", id)
}

func (us *UserStore) getWhere(where string, arg interface{}) (*User, error) {
	u := &User{}
	err := us.store.db.QueryRow(`
		SELECT id, login, email, nicename, display_name, first_name, last_name, registered, role
		FROM users WHERE `+where,
		arg).Scan(&u.ID, &u.Login, &u.Email, &u.Nicename, &u.DisplayName,
		&u.FirstName, &u.LastName, &u.Registered, &u.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by ID.
func (us *UserStore) List() ([]User, error) {
	rows, err := us.store.db.Query(`
		SELECT id, login, email, nicename, display_name, first_name, last_name, registered, role
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.Nicename, &u.DisplayName,
			&u.FirstName, &u.LastName, &u.Registered, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddMeta attaches a metadata key/value pair to a user.
func (us *UserStore) AddMeta(userID int64, key, value string) error {
	return addMeta(us.store.db, "usermeta", "user_id", userID, MetaEntry{Key: key, Value: value})
}

// GetMeta returns all metadata for a user as key -> values.
func (us *UserStore) GetMeta(userID int64) (map[string][]string, error) {
	return getMeta(us.store, "SELECT key, value FROM usermeta WHERE user_id = ? ORDER BY id", userID)
}
