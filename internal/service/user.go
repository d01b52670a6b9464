package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports"
)

type UserService struct {
	repo        ports.UserRepo
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	adminSecret string
}

func NewUserService(
	repo ports.UserRepo,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	adminSecret string,
) *UserService {
	return &UserService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		adminSecret: adminSecret,
	}
}

// Register creates a regular user and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, string, error) {
	return s.register(ctx, input, domain.RoleUser)
}

// RegisterAdmin creates an admin account. The secret must match the
// configured admin secret; an empty configured secret disables the route.
func (s *UserService) RegisterAdmin(ctx context.Context, input domain.RegisterInput, secret string) (*domain.User, string, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		return nil, "", fmt.Errorf("%w: invalid admin secret", domain.ErrForbidden)
	}
	return s.register(ctx, input, domain.RoleAdmin)
}

func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) register(ctx context.Context, input domain.RegisterInput, role domain.Role) (*domain.User, string, error) {
	if err := input.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(input, role, hash)
	if err = s.repo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}
