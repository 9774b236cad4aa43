package service

import (
	"context"
	"testing"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func TestRegister_CreatesStudent(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" &&
			u.Role == domain.RoleStudent &&
			u.Plan == domain.PlanPro &&
			u.PasswordHash != "" && u.PasswordHash != "secret-password"
	})).Return(userID, nil)

	user, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "secret-password", domain.PlanPro)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Empty(t, user.PasswordHash)
	userRepo.AssertExpectations(t)
}

func TestRegister_DefaultsToBasicPlan(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Plan == domain.PlanBasic
	})).Return(primitive.NewObjectID(), nil)

	_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "secret-password", "")

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "jane@example.com").
		Return(&domain.User{Email: "jane@example.com"}, nil)

	_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "secret-password", domain.PlanBasic)

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateInsertRace(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(primitive.NilObjectID, repository.ErrDuplicate)

	_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "secret-password", domain.PlanBasic)

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin_ReturnsSignedToken(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{
		ID:           userID,
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
	}
	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(stored, nil)

	token, user, err := svc.Login(ctx, "jane@example.com", "secret-password")

	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, userID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, "course-app", claims.Issuer)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, testJWTSecret, 0)
		ctx := context.Background()
		userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)

		_, _, err := svc.Login(ctx, "nobody@example.com", "secret-password")

		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, testJWTSecret, 0)
		ctx := context.Background()
		userRepo.On("GetByEmail", ctx, "jane@example.com").
			Return(&domain.User{Email: "jane@example.com", PasswordHash: string(hash)}, nil)

		_, user, err := svc.Login(ctx, "jane@example.com", "not-it")

		assert.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Nil(t, user)
	})
}
