package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = "branch" // Default role
	}
	if !u.IsActive {
		u.IsActive = true // Default to active
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(name, email, branch, password_hash, role, is_active)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.Branch, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return wrapErr("create user", err)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, branch, password_hash, role, is_active, created_at, updated_at
         FROM users WHERE id=$1`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Branch, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, branch, password_hash, role, is_active, created_at, updated_at
         FROM users WHERE email=$1`, email)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Branch, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, wrapErr("get user by email", err)
	}
	return &user, nil
}

// List returns all users without password hashes.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, email, branch, role, is_active, created_at, updated_at
         FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Branch,
			&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, wrapErr("scan user", err)
		}
		users = append(users, &user)
	}
	return users, wrapErr("list users", rows.Err())
}

// ToggleActiveStatus enables or disables a login.
func (r *UserRepository) ToggleActiveStatus(ctx context.Context, userID int, isActive bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET is_active=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		isActive, userID)
	return wrapErr("toggle user active", err)
}
