package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/transformer/internal/typeid"
)

var (
	ErrInvalidKey   = errors.New("invalid access key")
	ErrInvalidToken = errors.New("invalid token")
)

const tokenTTL = 7 * 24 * time.Hour

// Service issues and validates session tokens. Editors exchange a shared
// access key for a token; with no key hash configured any key is accepted.
type Service struct {
	jwtSecret     []byte
	accessKeyHash []byte
}

func NewService(jwtSecret, accessKeyHash string) *Service {
	return &Service{
		jwtSecret:     []byte(jwtSecret),
		accessKeyHash: []byte(accessKeyHash),
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// HashAccessKey returns the bcrypt hash to configure as ACCESS_KEY_HASH.
func HashAccessKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		return "", fmt.Errorf("hash access key: %w", err)
	}
	return string(hash), nil
}

// IssueToken checks accessKey and returns a token for a new user session.
func (s *Service) IssueToken(displayName, accessKey string) (*AuthResult, error) {
	if len(s.accessKeyHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(s.accessKeyHash, []byte(accessKey)); err != nil {
			return nil, ErrInvalidKey
		}
	}

	user := User{ID: typeid.NewUserID(), DisplayName: displayName}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *Service) issueToken(user User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the user a token was issued to.
func (s *Service) ValidateToken(tokenStr string) (*User, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)

	return &User{ID: sub, DisplayName: name}, nil
}
