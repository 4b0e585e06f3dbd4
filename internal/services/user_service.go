package services

import (
	"context"
	"errors"

	"returns-backend/internal/auth"
	"returns-backend/internal/cache"
	"returns-backend/internal/models"
	"returns-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// CreateUser registers a new login. Admin-gated at the HTTP layer.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, validationErrorf("name, email and password are required")
	}

	if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, validationErrorf("user with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Branch:       req.Branch,
		PasswordHash: hashedPassword,
		Role:         req.Role,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

// ToggleActive enables or disables a login.
func (s *UserService) ToggleActive(ctx context.Context, id int, active bool) error {
	return s.Repo.ToggleActiveStatus(ctx, id, active)
}

// Login authenticates a user and returns a JWT token. Verified
// credentials are cached in Redis so repeated logins skip the bcrypt
// comparison; the cache degrades to a no-op when Redis is down.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, validationErrorf("email and password are required")
	}

	// Fast path: credentials recently verified.
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); ok {
		user, err := s.Repo.Get(ctx, int(userID))
		if err == nil && user.IsActive {
			token, err := s.JWTManager.GenerateToken(user)
			if err != nil {
				return nil, err
			}
			return &models.AuthResponse{Token: token, User: user}, nil
		}
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New("account is suspended")
	}

	cache.CacheAuth(ctx, req.Email, req.Password, int64(user.ID))

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
