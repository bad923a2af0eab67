package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := f.users[userID]
	if !ok || u.DeletedAt != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	clone := *user
	clone.Version++
	f.users[user.ID] = &clone
	user.Version++
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID id.ID) error {
	delete(f.users, userID)
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username && u.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

type fakeTokenRepo struct {
	tokens map[string]*RefreshToken // by hash
}

func (f *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	clone := *token
	f.tokens[token.TokenHash] = &clone
	return nil
}

func (f *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("token", "")
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeTokenRepo) activeCount(userID id.ID) int {
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

func newTestService() (*Service, *fakeUserRepo, *fakeTokenRepo) {
	userRepo := &fakeUserRepo{users: map[id.ID]*User{}}
	tokenRepo := &fakeTokenRepo{tokens: map[string]*RefreshToken{}}
	svc := NewService(
		userRepo,
		tokenRepo,
		&fakeTxManager{},
		NewJWTService(DefaultJWTConfig("test-secret")),
		DefaultServiceConfig(),
	)
	return svc, userRepo, tokenRepo
}

func registerUser(t *testing.T, svc *Service) *User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc, userRepo, _ := newTestService()

	user := registerUser(t, svc)

	// Email lowercased on registration
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Secret123!", user.PasswordHash)
	assert.Len(t, userRepo.users, 1)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	registerUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "Secret123!",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestRegister_DuplicateUsernameRejected(t *testing.T) {
	svc, _, _ := newTestService()
	registerUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "other@example.com",
		Username: "alice",
		Password: "Secret123!",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "short",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestLogin(t *testing.T) {
	svc, userRepo, tokenRepo := newTestService()
	registered := registerUser(t, svc)

	tokens, user, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 1, tokenRepo.activeCount(user.ID))
	require.NotNil(t, userRepo.users[user.ID].LastLoginAt)

	// The access token round-trips through the validator
	claims, err := svc.JWT().ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_WrongPasswordCountsAttempt(t *testing.T) {
	svc, userRepo, _ := newTestService()
	registered := registerUser(t, svc)

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "invalid credentials")
	assert.Equal(t, 1, userRepo.users[registered.ID].FailedLoginAttempts)
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	svc, _, _ := newTestService()
	registerUser(t, svc)

	bad := Credentials{Email: "alice@example.com", Password: "wrong-password"}
	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(context.Background(), bad)
		require.Error(t, err)
	}

	// Even the correct password is rejected while locked
	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRefreshToken_RotatesSingleUse(t *testing.T) {
	svc, _, tokenRepo := newTestService()
	registerUser(t, svc)

	tokens, user, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, tokenRepo.activeCount(user.ID))

	// The old token is spent
	_, err = svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	svc, _, tokenRepo := newTestService()
	registerUser(t, svc)

	creds := Credentials{Email: "alice@example.com", Password: "Secret123!"}
	_, user, err := svc.Login(context.Background(), creds)
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), creds)
	require.NoError(t, err)

	require.Equal(t, 2, tokenRepo.activeCount(user.ID))
	require.NoError(t, svc.Logout(context.Background(), user.ID))
	assert.Equal(t, 0, tokenRepo.activeCount(user.ID))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	user := registerUser(t, svc)

	newName := "alice-renamed"
	fullName := "Alice Example"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Username: &newName,
		FullName: &fullName,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice-renamed", updated.Username)
	assert.Equal(t, "Alice Example", updated.FullName)
}

func TestUpdateProfile_PasswordChangeRevokesSessions(t *testing.T) {
	svc, _, tokenRepo := newTestService()
	registerUser(t, svc)

	_, user, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	require.Equal(t, 1, tokenRepo.activeCount(user.ID))

	newPassword := "Changed456!"
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, 0, tokenRepo.activeCount(user.ID))

	// Only the new password logs in
	_, _, err = svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	_, _, err = svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: newPassword,
	})
	require.NoError(t, err)
}

func TestUpdateProfile_TakenUsernameRejected(t *testing.T) {
	svc, _, _ := newTestService()
	user := registerUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	taken := "bob"
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Username: &taken})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestDeleteAccount(t *testing.T) {
	svc, userRepo, tokenRepo := newTestService()
	registerUser(t, svc)

	_, user, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))
	assert.Empty(t, userRepo.users)
	assert.Equal(t, 0, tokenRepo.activeCount(user.ID))
}
