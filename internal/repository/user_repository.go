package repository

import (
	"context"
	"database/sql" // SQL database interactions
	"errors"       // sql.ErrNoRows checks
	"fmt"
	"strings" // email normalisation and SET building

	"github.com/iliyamo/cinebook/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,phonenumber,password_hash,role,created_at,updated_at"

// NormalizeEmail lower-cases and trims an address before it touches the table.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts a user with an already hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phonenumber, password_hash, role) VALUES (?,?,?,?,?)",
		strings.TrimSpace(u.Name), NormalizeEmail(u.Email), strings.TrimSpace(u.PhoneNumber), u.PasswordHash, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile writes only the fields set in p. An empty update is a no-op.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p model.ProfileUpdate) error {
	if p.Empty() {
		return nil
	}
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.PhoneNumber != nil {
		sets = append(sets, "phonenumber=?")
		args = append(args, strings.TrimSpace(*p.PhoneNumber))
	}
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, NormalizeEmail(*p.Email))
	}
	if p.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *p.PasswordHash)
	}
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	// MySQL reports 0 affected rows when values are unchanged, so only a
	// missing row is checked here.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
