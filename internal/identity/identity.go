// Package identity registers and authenticates students and admins and
// resolves bearer tokens into principals.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgEmailTaken     = "This email is already registered. Please login instead."
	msgStudentIDTaken = "This student ID is already registered"
	msgInvalidID      = "Invalid Student ID"
	msgInvalidCreds   = "Invalid credentials"
	msgNotStudent     = "This account is not a student account"
	msgNotAdmin       = "This account is not an admin account"
	msgInvalidToken   = "Invalid or expired token"
)

// Claims is the JWT payload. The role claim is informational; Resolve takes
// the role from the stored profile.
type Claims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// Session is returned by every successful login or registration.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

type RegisterInput struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	StudentID string `json:"student_id" validate:"required,min=3,max=50"`
	Batch     string `json:"batch" validate:"required,max=50"`
	Phone     string `json:"phone" validate:"required,min=10,max=15"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
}

type StudentLogin struct {
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type AdminLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type Service struct {
	Storage storage.ProfileStore
	Secret  []byte
	TTL     time.Duration
	Issuer  string
	Cost    int
	Now     func() time.Time

	validate *validation.Validator
	log      *slog.Logger
}

func NewService(s storage.ProfileStore, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = config.DefaultJWTTTL
	}
	return &Service{
		Storage:  s,
		Secret:   []byte(secret),
		TTL:      ttl,
		Issuer:   config.JWTIssuer,
		Cost:     bcrypt.DefaultCost,
		Now:      time.Now,
		validate: validation.New(),
		log:      logging.Component("identity"),
	}
}

// RegisterStudent creates a student account and signs it in.
func (s *Service) RegisterStudent(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Batch = strings.TrimSpace(in.Batch)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if existing, err := s.Storage.GetProfileByEmail(ctx, in.Email); err != nil {
		return nil, apperr.Internal("Registration failed", err)
	} else if existing != nil {
		return nil, apperr.AlreadyExists(msgEmailTaken)
	}
	if existing, err := s.Storage.GetProfileByStudentID(ctx, in.StudentID); err != nil {
		return nil, apperr.Internal("Registration failed", err)
	} else if existing != nil {
		return nil, apperr.AlreadyExists(msgStudentIDTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, apperr.Internal("Registration failed", err)
	}

	p := &models.Profile{
		Name:         in.Name,
		Role:         models.RoleStudent,
		StudentID:    &in.StudentID,
		Batch:        &in.Batch,
		Phone:        &in.Phone,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Storage.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// lost a race with a concurrent registration
			return nil, apperr.AlreadyExists(msgEmailTaken)
		}
		s.log.ErrorContext(ctx, "failed to create profile", "error", err)
		return nil, apperr.Internal("Registration failed", err)
	}

	s.log.InfoContext(ctx, "student registered", "profile_id", p.ID)
	return s.issue(p)
}

// LoginStudent resolves the student id to its account email, then checks the password.
func (s *Service) LoginStudent(ctx context.Context, in StudentLogin) (*Session, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	email, err := s.Storage.EmailByStudentID(ctx, in.StudentID)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	if email == "" {
		return nil, apperr.Unauthenticated(msgInvalidID)
	}

	p, err := s.authenticate(ctx, email, in.Password)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleStudent {
		return nil, apperr.Forbidden(msgNotStudent)
	}
	return s.issue(p)
}

func (s *Service) LoginAdmin(ctx context.Context, in AdminLogin) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, apperr.Forbidden(msgNotAdmin)
	}
	return s.issue(p)
}

// ProvisionAdmin creates an admin account. Only the operator CLI calls it.
func (s *Service) ProvisionAdmin(ctx context.Context, in AdminInput) (*models.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, apperr.Internal("Failed to create admin", err)
	}
	p := &models.Profile{
		Name:         in.Name,
		Role:         models.RoleAdmin,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Storage.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.AlreadyExists(msgEmailTaken)
		}
		return nil, apperr.Internal("Failed to create admin", err)
	}
	s.log.InfoContext(ctx, "admin provisioned", "profile_id", p.ID)
	return p, nil
}

// Resolve verifies a bearer token and loads the principal it names.
func (s *Service) Resolve(ctx context.Context, raw string) (models.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil || claims.Subject == "" {
		return models.Principal{}, apperr.Unauthenticated(msgInvalidToken)
	}

	p, err := s.Storage.GetProfileByID(ctx, claims.Subject)
	if err != nil {
		return models.Principal{}, apperr.Internal("Failed to load profile", err)
	}
	if p == nil || !p.Role.Valid() {
		return models.Principal{}, apperr.Unauthenticated(msgInvalidToken)
	}
	return models.Principal{ID: p.ID, Role: p.Role, Name: p.Name}, nil
}

// Profile returns the caller's own profile.
func (s *Service) Profile(ctx context.Context, p models.Principal) (*models.Profile, error) {
	profile, err := s.Storage.GetProfileByID(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to load profile", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("Profile not found")
	}
	return profile, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	p, err := s.Storage.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	if p == nil || bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthenticated(msgInvalidCreds)
	}
	return p, nil
}

func (s *Service) issue(p *models.Profile) (*Session, error) {
	now := s.Now().UTC()
	exp := now.Add(s.TTL)
	claims := Claims{
		Role: p.Role,
		Name: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, apperr.Internal("Failed to create token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, Profile: p}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
