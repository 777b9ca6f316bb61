package usecase_test

import (
	"context"
	"time"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"
	"charforge/internal/usecase"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// Mock: CharacterRepository
// =====================

type MockCharacterRepository struct {
	mock.Mock
}

func (m *MockCharacterRepository) FindByID(ctx context.Context, id int64) (model.Character, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Character)
	return c, args.Error(1)
}

func (m *MockCharacterRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Character, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Character)
	return c, args.Error(1)
}

func (m *MockCharacterRepository) ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCharacterRepository) Create(ctx context.Context, c model.Character) (model.Character, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Character)
	return out, args.Error(1)
}

func (m *MockCharacterRepository) Update(ctx context.Context, c model.Character) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCharacterRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCharacterRepository) List(ctx context.Context, f repo.CharacterListFilter) ([]model.Character, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Character)
	return items, args.Get(1).(int64), args.Error(2)
}

var _ repo.CharacterRepository = (*MockCharacterRepository)(nil)

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockClassRepository) List(ctx context.Context) ([]model.CharacterClass, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.CharacterClass)
	return items, args.Error(1)
}

// =====================
// Mock: CommentRepository
// =====================

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id int64) (model.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Comment)
	return c, args.Error(1)
}

func (m *MockCommentRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Comment)
	return c, args.Error(1)
}

func (m *MockCommentRepository) ExistsByCharacterAndAuthor(ctx context.Context, characterID, authorID int64) (bool, error) {
	args := m.Called(ctx, characterID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Comment)
	return out, args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, c model.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListApprovedByCharacter(ctx context.Context, characterID int64) ([]model.Comment, error) {
	args := m.Called(ctx, characterID)
	items, _ := args.Get(0).([]model.Comment)
	return items, args.Error(1)
}

func (m *MockCommentRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error) {
	args := m.Called(ctx, authorID)
	items, _ := args.Get(0).([]model.Comment)
	return items, args.Error(1)
}

func (m *MockCommentRepository) ListPending(ctx context.Context, page int, limit int) ([]model.Comment, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Comment)
	return items, args.Get(1).(int64), args.Error(2)
}

var _ repo.CommentRepository = (*MockCommentRepository)(nil)

// =====================
// Mock: UserRepository
// =====================

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

func (m *MockUserRepository) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

var _ repo.UserRepository = (*MockUserRepository)(nil)

// =====================
// Mock: ActivityLogRepository
// =====================

type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, log model.ActivityLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(ctx context.Context, f repo.ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.ActivityLog)
	return items, args.Get(1).(int64), args.Error(2)
}

// =====================
// Mock: TransactionManager
// =====================

// txRepos はTx内で同じモックを返す
type txRepos struct {
	characters *MockCharacterRepository
	comments   *MockCommentRepository
	users      *MockUserRepository
	logs       *MockActivityLogRepository
}

func (r txRepos) Characters() repo.CharacterRepository     { return r.characters }
func (r txRepos) Comments() repo.CommentRepository         { return r.comments }
func (r txRepos) Users() repo.UserRepository               { return r.users }
func (r txRepos) ActivityLogs() repo.ActivityLogRepository { return r.logs }

type MockTxManager struct {
	mock.Mock
	repos txRepos
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.repos)
}

// =====================
// Mock: Notifier
// =====================

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Welcome(ctx context.Context, to usecase.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockNotifier) PasswordReset(ctx context.Context, to usecase.Recipient, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func (m *MockNotifier) TemporaryPassword(ctx context.Context, to usecase.Recipient, temporaryPassword string) error {
	return m.Called(ctx, to, temporaryPassword).Error(0)
}

func (m *MockNotifier) CharacterApproved(ctx context.Context, to usecase.Recipient, characterName string) error {
	return m.Called(ctx, to, characterName).Error(0)
}

func (m *MockNotifier) CharacterRejected(ctx context.Context, to usecase.Recipient, characterName string, reason string) error {
	return m.Called(ctx, to, characterName, reason).Error(0)
}

func (m *MockNotifier) CommentApproved(ctx context.Context, to usecase.Recipient, characterName string) error {
	return m.Called(ctx, to, characterName).Error(0)
}

func (m *MockNotifier) CommentRejected(ctx context.Context, to usecase.Recipient, characterName string, reason string) error {
	return m.Called(ctx, to, characterName, reason).Error(0)
}

func (m *MockNotifier) AccountSuspended(ctx context.Context, to usecase.Recipient, reason string) error {
	return m.Called(ctx, to, reason).Error(0)
}

func (m *MockNotifier) AccountReactivated(ctx context.Context, to usecase.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockNotifier) AccountDeleted(ctx context.Context, to usecase.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockNotifier) ContactMessage(ctx context.Context, msg usecase.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

var _ usecase.Notifier = (*MockNotifier)(nil)

// =====================
// helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// 固定パスワードハッシュ（"hashed:" + 平文）
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type fakeVerifier struct{}

func (fakeVerifier) Verify(plain, hashed string) bool { return hashed == "hashed:"+plain }

type fixedSecrets struct{ secret string }

func (s fixedSecrets) NewSecret() string { return s.secret }

// deps はusecaseを組み立てるためのモック一式
type deps struct {
	characters *MockCharacterRepository
	classes    *MockClassRepository
	comments   *MockCommentRepository
	users      *MockUserRepository
	logs       *MockActivityLogRepository
	tx         *MockTxManager
	notifier   *MockNotifier
	audit      *usecase.ActivityLogUsecase
	pager      usecase.Pager
	clock      fixedClock
	logger     *zap.Logger
}

func newDeps() *deps {
	d := &deps{
		characters: new(MockCharacterRepository),
		classes:    new(MockClassRepository),
		comments:   new(MockCommentRepository),
		users:      new(MockUserRepository),
		logs:       new(MockActivityLogRepository),
		notifier:   new(MockNotifier),
		pager:      usecase.NewPager(1000, 20),
		clock:      fixedClock{t: testNow},
		logger:     zap.NewNop(),
	}
	d.tx = &MockTxManager{repos: txRepos{
		characters: d.characters,
		comments:   d.comments,
		users:      d.users,
		logs:       d.logs,
	}}
	d.audit = usecase.NewActivityLogUsecase(d.logs, d.clock, d.pager, d.logger)
	return d
}

func (d *deps) assertExpectations(t mock.TestingT) {
	d.characters.AssertExpectations(t)
	d.classes.AssertExpectations(t)
	d.comments.AssertExpectations(t)
	d.users.AssertExpectations(t)
	d.logs.AssertExpectations(t)
	d.tx.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

var (
	owner    = model.Principal{UserID: 10, Pseudo: "aria", Role: model.RoleUser}
	stranger = model.Principal{UserID: 11, Pseudo: "bram", Role: model.RoleUser}
	reviewer = model.Principal{UserID: 20, Pseudo: "mod", Role: model.RoleEmployee}
	admin    = model.Principal{UserID: 30, Pseudo: "root", Role: model.RoleAdmin}
)

func codeOf(err error) usecase.ErrorCode {
	return usecase.CodeOf(err)
}
