package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"clickgo/internal/domain/model"
	"clickgo/internal/repository"
	auth "clickgo/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks / stubs
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, revokedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type stubHasher struct{}

func (h *stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

// 平文が"hashed:"付きで保存されている前提の照合
type stubPasswordVerifier struct{}

func (v *stubPasswordVerifier) Verify(plain string, hashed string) bool {
	return hashed == "hashed:"+plain
}

type stubIssuer struct{}

func (i *stubIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	return "jwt-for-" + userID, now.Add(15 * time.Minute), nil
}

type fixedIDGen struct{ id string }

func (g *fixedIDGen) NewID() string { return g.id }

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// =====================
// Register
// =====================

func newRegisterUsecase(users *UserRepoMock) *auth.RegisterUserUsecase {
	return auth.NewRegisterUserUsecase(users, &stubHasher{}, &fixedIDGen{id: "user-1"}, &fixedClock{now: testNow})
}

func TestRegister_InvalidEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := newRegisterUsecase(users)

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "Ana",
		Email:    "no-es-un-email",
		Password: "password123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	users := new(UserRepoMock)
	uc := newRegisterUsecase(users)

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "corta",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(&model.User{ID: "existing"}, nil)
	uc := newRegisterUsecase(users)

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

func TestRegister_Success(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, repository.ErrUserNotFound)

	var created *model.User
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)

	uc := newRegisterUsecase(users)
	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "password123",
	})
	assert.NoError(t, err)

	//保存されるのはハッシュ、初期ロールはuser
	if assert.NotNil(t, created) {
		assert.Equal(t, "hashed:password123", created.PasswordHash)
		assert.Equal(t, model.RoleUser, created.Role)
		assert.True(t, created.IsActive)
	}

	//応答にはハッシュを出さない
	assert.Empty(t, out.User.PasswordHash)
	assert.Equal(t, "ana@example.com", out.User.Email)
}

// =====================
// Login
// =====================

func newLoginUsecase(users *UserRepoMock, rts *RefreshTokenRepoMock) *auth.LoginUsecase {
	return auth.NewLoginUsecase(
		users, rts,
		&stubPasswordVerifier{}, &stubIssuer{},
		&fixedIDGen{id: "rt-1"}, &fixedClock{now: testNow},
		14*24*time.Hour,
	)
}

func activeUser() *model.User {
	return &model.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		PasswordHash: "hashed:password123",
		Role:         model.RoleUser,
		IsActive:     true,
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	users.On("FindByEmail", mock.Anything, "nadie@example.com").Return(nil, repository.ErrUserNotFound)

	_, _, err := newLoginUsecase(users, rts).Execute(context.Background(), auth.LoginInput{
		Email:    "nadie@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(activeUser(), nil)

	_, _, err := newLoginUsecase(users, rts).Execute(context.Background(), auth.LoginInput{
		Email:    "ana@example.com",
		Password: "equivocada",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	rts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	u := activeUser()
	u.IsActive = false
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(u, nil)

	_, _, err := newLoginUsecase(users, rts).Execute(context.Background(), auth.LoginInput{
		Email:    "ana@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestLogin_Success(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(activeUser(), nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	var storedRT *model.RefreshToken
	rts.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		storedRT = args.Get(1).(*model.RefreshToken)
	}).Return(nil)

	out, side, err := newLoginUsecase(users, rts).Execute(context.Background(), auth.LoginInput{
		Email:     "ana@example.com",
		Password:  "password123",
		UserAgent: "test-agent",
	})
	assert.NoError(t, err)
	assert.Equal(t, "jwt-for-user-1", out.Token.AccessToken)
	assert.Equal(t, int((15 * time.Minute).Seconds()), out.Token.ExpiresIn)
	assert.Empty(t, out.User.PasswordHash)

	//平文はcookie用に返し、DBにはsha256だけ保存する
	assert.NotEmpty(t, side.PlainRefreshToken)
	if assert.NotNil(t, storedRT) {
		assert.Equal(t, sha256Hex(side.PlainRefreshToken), storedRT.TokenHash)
		assert.NotContains(t, storedRT.TokenHash, side.PlainRefreshToken)
		assert.Equal(t, "user-1", storedRT.UserID)
		assert.Equal(t, testNow.Add(14*24*time.Hour), storedRT.ExpiresAt)
	}
}

// =====================
// Refresh
// =====================

func newRefreshUsecase(users *UserRepoMock, rts *RefreshTokenRepoMock) *auth.RefreshUsecase {
	return auth.NewRefreshUsecase(
		users, rts,
		&stubIssuer{},
		&fixedIDGen{id: "rt-2"}, &fixedClock{now: testNow},
		14*24*time.Hour,
	)
}

func storedRefreshToken() *model.RefreshToken {
	return &model.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		TokenHash: sha256Hex("plain-refresh"),
		ExpiresAt: testNow.Add(time.Hour),
	}
}

func TestRefresh_EmptyToken(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)

	_, _, err := newRefreshUsecase(users, rts).Execute(context.Background(), auth.RefreshInput{})
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

func TestRefresh_UnknownToken(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(nil, repository.ErrRefreshTokenNotFound)

	_, _, err := newRefreshUsecase(users, rts).Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "desconocido",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	stored := storedRefreshToken()
	stored.ExpiresAt = testNow.Add(-time.Minute)
	rts.On("FindByTokenHash", mock.Anything, sha256Hex("plain-refresh")).Return(stored, nil)

	_, _, err := newRefreshUsecase(users, rts).Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "plain-refresh",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
	rts.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
}

// 一度使ったrefresh tokenは再利用できない
func TestRefresh_UsedTokenRejected(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	stored := storedRefreshToken()
	used := testNow.Add(-time.Minute)
	stored.UsedAt = &used
	rts.On("FindByTokenHash", mock.Anything, sha256Hex("plain-refresh")).Return(stored, nil)

	_, _, err := newRefreshUsecase(users, rts).Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "plain-refresh",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := new(UserRepoMock)
	rts := new(RefreshTokenRepoMock)
	rts.On("FindByTokenHash", mock.Anything, sha256Hex("plain-refresh")).Return(storedRefreshToken(), nil)
	users.On("FindByID", mock.Anything, "user-1").Return(activeUser(), nil)
	rts.On("MarkUsed", mock.Anything, "rt-1", testNow).Return(nil)

	var next *model.RefreshToken
	rts.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		next = args.Get(1).(*model.RefreshToken)
	}).Return(nil)

	out, side, err := newRefreshUsecase(users, rts).Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "plain-refresh",
	})
	assert.NoError(t, err)
	assert.Equal(t, "jwt-for-user-1", out.Token.AccessToken)

	//古いtokenは使用済みになり、新しいtokenが発行される
	rts.AssertCalled(t, "MarkUsed", mock.Anything, "rt-1", testNow)
	assert.NotEqual(t, "plain-refresh", side.PlainRefreshToken)
	if assert.NotNil(t, next) {
		assert.Equal(t, sha256Hex(side.PlainRefreshToken), next.TokenHash)
		assert.Equal(t, "user-1", next.UserID)
	}
}
