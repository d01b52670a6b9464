package ports

import "github.com/Saloni021-kashyap/Tripkart/internal/domain"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}
