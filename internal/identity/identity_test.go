package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/identity"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage/storagetest"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret-0123456789"

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*identity.Service, *storagetest.MemoryStore) {
	t.Helper()
	store := storagetest.NewMemoryStore()
	svc := identity.NewService(store, secret, time.Hour)
	svc.Cost = bcrypt.MinCost
	svc.Now = storagetest.FixedClock(now)
	return svc, store
}

func validRegistration() identity.RegisterInput {
	return identity.RegisterInput{
		Name:      "Asha Menon",
		StudentID: "BCR-2041",
		Batch:     "BCR41",
		Phone:     "9876543210",
		Email:     "Asha@Example.edu ",
		Password:  "correct horse",
	}
}

func codeOf(t *testing.T, err error) apperr.Code {
	t.Helper()
	require.Error(t, err)
	return apperr.CodeOf(err)
}

func TestRegisterStudent(t *testing.T) {
	// Arrange
	svc, store := newService(t)

	// Act
	sess, err := svc.RegisterStudent(context.Background(), validRegistration())

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)
	assert.Equal(t, models.RoleStudent, sess.Profile.Role)
	assert.Equal(t, "asha@example.edu", sess.Profile.Email)

	stored, _ := store.GetProfileByStudentID(context.Background(), "BCR-2041")
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestRegisterStudent_Duplicates(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.RegisterStudent(context.Background(), validRegistration())
	require.NoError(t, err)

	sameEmail := validRegistration()
	sameEmail.StudentID = "BCR-9999"
	_, err = svc.RegisterStudent(context.Background(), sameEmail)
	assert.Equal(t, apperr.CodeAlreadyExists, codeOf(t, err))
	assert.Equal(t, "This email is already registered. Please login instead.", apperr.As(err).Message)

	sameID := validRegistration()
	sameID.Email = "other@example.edu"
	_, err = svc.RegisterStudent(context.Background(), sameID)
	assert.Equal(t, apperr.CodeAlreadyExists, codeOf(t, err))
	assert.Equal(t, "This student ID is already registered", apperr.As(err).Message)
}

func TestRegisterStudent_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*identity.RegisterInput)
		field string
	}{
		{"short name", func(in *identity.RegisterInput) { in.Name = "A" }, "name"},
		{"short student id", func(in *identity.RegisterInput) { in.StudentID = "AB" }, "student_id"},
		{"blank batch", func(in *identity.RegisterInput) { in.Batch = "   " }, "batch"},
		{"short phone", func(in *identity.RegisterInput) { in.Phone = "12345" }, "phone"},
		{"bad email", func(in *identity.RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *identity.RegisterInput) { in.Password = "short" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			in := validRegistration()
			tt.edit(&in)

			_, err := svc.RegisterStudent(context.Background(), in)

			assert.Equal(t, apperr.CodeValidation, codeOf(t, err))
			assert.Contains(t, apperr.As(err).Fields, tt.field)
			p, _ := store.GetProfileByEmail(context.Background(), "asha@example.edu")
			assert.Nil(t, p, "no write on validation failure")
		})
	}
}

func TestLoginStudent(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.RegisterStudent(context.Background(), validRegistration())
	require.NoError(t, err)

	sess, err := svc.LoginStudent(context.Background(), identity.StudentLogin{StudentID: " BCR-2041 ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Menon", sess.Profile.Name)

	_, err = svc.LoginStudent(context.Background(), identity.StudentLogin{StudentID: "BCR-0000", Password: "correct horse"})
	assert.Equal(t, apperr.CodeUnauthenticated, codeOf(t, err))
	assert.Equal(t, "Invalid Student ID", apperr.As(err).Message)

	_, err = svc.LoginStudent(context.Background(), identity.StudentLogin{StudentID: "BCR-2041", Password: "wrong password"})
	assert.Equal(t, apperr.CodeUnauthenticated, codeOf(t, err))
	assert.Equal(t, "Invalid credentials", apperr.As(err).Message)
}

func TestLoginStudent_NotAStudent(t *testing.T) {
	// Arrange
	store := new(storagetest.MockStorage)
	svc := identity.NewService(store, secret, time.Hour)
	svc.Now = storagetest.FixedClock(now)
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	store.On("EmailByStudentID", mock.Anything, "ADM-1").Return("warden@example.edu", nil)
	store.On("GetProfileByEmail", mock.Anything, "warden@example.edu").
		Return(&models.Profile{ID: "a-1", Role: models.RoleAdmin, PasswordHash: string(hash)}, nil)

	// Act
	_, err := svc.LoginStudent(context.Background(), identity.StudentLogin{StudentID: "ADM-1", Password: "correct horse"})

	// Assert
	assert.Equal(t, apperr.CodePermissionDenied, codeOf(t, err))
	assert.Equal(t, "This account is not a student account", apperr.As(err).Message)
	store.AssertExpectations(t)
}

func TestLoginAdmin(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ProvisionAdmin(context.Background(), identity.AdminInput{Name: "Warden", Email: "warden@example.edu", Password: "admin password"})
	require.NoError(t, err)
	_, err = svc.RegisterStudent(context.Background(), validRegistration())
	require.NoError(t, err)

	sess, err := svc.LoginAdmin(context.Background(), identity.AdminLogin{Email: "WARDEN@example.edu", Password: "admin password"})
	require.NoError(t, err)
	assert.True(t, sess.Profile.IsAdmin())

	_, err = svc.LoginAdmin(context.Background(), identity.AdminLogin{Email: "asha@example.edu", Password: "correct horse"})
	assert.Equal(t, apperr.CodePermissionDenied, codeOf(t, err))
	assert.Equal(t, "This account is not an admin account", apperr.As(err).Message)

	_, err = svc.ProvisionAdmin(context.Background(), identity.AdminInput{Name: "Warden", Email: "warden@example.edu", Password: "admin password"})
	assert.Equal(t, apperr.CodeAlreadyExists, codeOf(t, err))
}

func TestResolve(t *testing.T) {
	svc, store := newService(t)
	sess, err := svc.RegisterStudent(context.Background(), validRegistration())
	require.NoError(t, err)

	p, err := svc.Resolve(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{ID: sess.Profile.ID, Role: models.RoleStudent, Name: "Asha Menon"}, p)

	t.Run("role comes from the stored profile", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
			Role: models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sess.Profile.ID,
				Issuer:    svc.Issuer,
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		raw, err := forged.SignedString([]byte(secret))
		require.NoError(t, err)

		p, err := svc.Resolve(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, p.Role)
	})

	t.Run("expired", func(t *testing.T) {
		svc.Now = storagetest.FixedClock(now.Add(2 * time.Hour))
		defer func() { svc.Now = storagetest.FixedClock(now) }()
		_, err := svc.Resolve(context.Background(), sess.Token)
		assert.Equal(t, apperr.CodeUnauthenticated, codeOf(t, err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := identity.NewService(store, "another-secret-0123456789", time.Hour)
		other.Now = storagetest.FixedClock(now)
		_, err := other.Resolve(context.Background(), sess.Token)
		assert.Equal(t, apperr.CodeUnauthenticated, codeOf(t, err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "not.a.token")
		assert.Equal(t, apperr.CodeUnauthenticated, codeOf(t, err))
	})
}

func TestProfile(t *testing.T) {
	svc, _ := newService(t)
	sess, err := svc.RegisterStudent(context.Background(), validRegistration())
	require.NoError(t, err)

	p, err := svc.Profile(context.Background(), models.Principal{ID: sess.Profile.ID, Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "BCR-2041", *p.StudentID)

	_, err = svc.Profile(context.Background(), models.Principal{ID: "missing"})
	assert.Equal(t, apperr.CodeNotFound, codeOf(t, err))
}

func TestResolve_StoreFailure(t *testing.T) {
	store := new(storagetest.MockStorage)
	svc := identity.NewService(store, secret, time.Hour)
	svc.Now = storagetest.FixedClock(now)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "s-1", Issuer: svc.Issuer, ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	store.On("GetProfileByID", mock.Anything, "s-1").Return(nil, errors.New("connection refused"))

	_, err = svc.Resolve(context.Background(), tok)

	assert.Equal(t, apperr.CodeInternal, codeOf(t, err))
}
