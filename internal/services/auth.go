package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 30 * 24 * time.Hour
	avatarURLBase = "https://api.dicebear.com/9.x/avataaars-neutral/svg?seed="
)

// TokenUser is the identity carried inside a bearer token
type TokenUser struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// TokenClaims are the signed claims of a bearer token
type TokenClaims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// AuthUser is the user shape returned by signup and login
type AuthUser struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	ProfilePictureURL string   `json:"profilePictureUrl"`
	SavedPosts        []string `json:"savedPosts"`
	Following         []string `json:"following"`
	Followers         []string `json:"followers"`
}

// AuthResult is returned by signup and login
type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// AuthService handles signup, login and bearer tokens
type AuthService struct {
	userRepo   UserStore
	jwtSecret  []byte
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// uriComponentReplacer turns url.QueryEscape output into the URI component
// encoding browsers use: spaces as %20 and !'()* left literal
var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// AvatarURL derives the default profile picture for a username
func AvatarURL(username string) string {
	return avatarURLBase + uriComponentReplacer.Replace(url.QueryEscape(username))
}

// Signup registers a new user and returns a token for them
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	taken, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:                uuid.New().String(),
		Username:          username,
		Email:             email,
		PasswordHash:      string(hash),
		ProfilePictureURL: AvatarURL(username),
		SavedPosts:        []string{},
		Following:         []string{},
		Followers:         []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.result(user)
}

// Login verifies credentials and returns a token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.result(user)
}

func (s *AuthService) result(user *models.User) (*AuthResult, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User: AuthUser{
			ID:                user.ID,
			Username:          user.Username,
			Email:             user.Email,
			ProfilePictureURL: user.ProfilePictureURL,
			SavedPosts:        user.SavedPosts,
			Following:         user.Following,
			Followers:         user.Followers,
		},
	}, nil
}

// GenerateToken signs a token for a user that expires after 30 days
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		User: TokenUser{
			ID:                user.ID,
			Username:          user.Username,
			ProfilePictureURL: user.ProfilePictureURL,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a token and returns the identity it carries
func (s *AuthService) ValidateToken(tokenString string) (*TokenUser, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims.User, nil
}
