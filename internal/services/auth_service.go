package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"quickclean/internal/domain"
	"quickclean/internal/repos"
)

var ErrBadCreds = errors.New("invalid username or password")

// Claims is the admin session token body.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Admins *repos.AdminRepo
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(admins *repos.AdminRepo, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{Admins: admins, Secret: []byte(secret), TTL: ttl}
}

// Login checks the credentials and returns the admin with a signed token.
// Unknown users and wrong passwords produce the same error.
func (s *AuthService) Login(username, password string) (*domain.Admin, string, error) {
	a, err := s.Admins.ByUsername(username)
	if domain.IsNotFound(err) {
		return nil, "", ErrBadCreds
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.Issue(a)
	if err != nil {
		return nil, "", err
	}
	if err := s.Admins.TouchLogin(a.ID); err != nil {
		return nil, "", err
	}
	return a, tok, nil
}

func (s *AuthService) Issue(a *domain.Admin) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: a.Username,
		Role:     a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verify parses tok and returns its claims. Any parse, signature or expiry
// failure maps to domain.ErrUnauthorized.
func (s *AuthService) Verify(tok string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) Me(id string) (*domain.Admin, error) { return s.Admins.ByID(id) }

func (s *AuthService) SetWhatsApp(username, number string) (*domain.Admin, error) {
	return s.Admins.SetWhatsApp(username, number)
}
