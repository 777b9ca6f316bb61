package auth

import (
	"context"
	"time"

	"charforge/internal/domain/model"
	"charforge/internal/repository"
	"charforge/internal/usecase"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	args := m.Called(ctx, tokenHash)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByPseudo(ctx context.Context, pseudo string) (bool, error) {
	args := m.Called(ctx, pseudo)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

var _ repository.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

// 認証フローが使う通知だけを記録する。ほかのメソッドを呼ぶとpanicする。
type MockNotifier struct {
	usecase.Notifier
	mock.Mock
}

func (m *MockNotifier) Welcome(ctx context.Context, to usecase.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockNotifier) PasswordReset(ctx context.Context, to usecase.Recipient, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

// =====================
// fakes
// =====================

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type fakeVerifier struct{}

func (fakeVerifier) Verify(plain, hashed string) bool { return hashed == "hashed:"+plain }

type fixedSecrets struct{ secret string }

func (s fixedSecrets) NewSecret() string { return s.secret }

type fakeIssuer struct{}

func (fakeIssuer) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	return "access-token", now.Add(15 * time.Minute), nil
}

func activeUser() *model.User {
	return &model.User{
		ID:           10,
		Pseudo:       "aria",
		Email:        "aria@example.com",
		PasswordHash: "hashed:correct-horse",
		Role:         model.RoleUser,
		TokenVersion: 2,
	}
}
