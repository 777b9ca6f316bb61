package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"charforge/internal/domain/model"
	"charforge/internal/repository"
	"charforge/internal/usecase"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Pseudo   string
	Password string
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   usecase.PasswordHasher
	notifier usecase.Notifier
	logger   *zap.Logger
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher usecase.PasswordHasher,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (model.User, error) {
	email := model.NormalizeEmail(in.Email)
	pseudo := strings.TrimSpace(in.Pseudo)

	// emailの形式チェック
	if !isValidEmailFormat(email) {
		return model.User{}, usecase.Validation("invalid email format")
	}
	if n := utf8.RuneCountInString(pseudo); n < 2 || n > 50 {
		return model.User{}, usecase.Validation("pseudo must be between 2 and 50 characters")
	}
	if len(in.Password) < usecase.MinPasswordLength {
		return model.User{}, usecase.Validation("password must be at least 8 characters")
	}
	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return model.User{}, usecase.Validation("password is too weak")
	}

	// email / pseudo 重複チェック
	taken, err := u.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, u.dbError(err)
	}
	if taken {
		return model.User{}, usecase.Conflict("email already exists")
	}
	taken, err = u.userRepo.ExistsByPseudo(ctx, pseudo)
	if err != nil {
		return model.User{}, u.dbError(err)
	}
	if taken {
		return model.User{}, usecase.Conflict("pseudo already exists")
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, usecase.Internal("password hash failed", err)
	}

	user := &model.User{
		Pseudo:       pseudo,
		Email:        email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         model.RoleUser,
	}

	// DBへ保存（同時登録で一意制約に当たった場合もCONFLICT）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, usecase.Conflict("email or pseudo already exists")
		}
		return model.User{}, u.dbError(err)
	}

	to := usecase.Recipient{Email: user.Email, Name: user.Pseudo}
	if err := u.notifier.Welcome(ctx, to); err != nil {
		u.logger.Warn("notification failed",
			zap.String("notification.kind", string(usecase.NotifyWelcome)),
			zap.String("recipient", to.Email),
			zap.Error(err),
		)
	}

	return *user, nil
}

func (u *RegisterUserUsecase) dbError(err error) error {
	u.logger.Error("register failed", zap.Error(err))
	return usecase.Internal("db error", err)
}

// メールチェック
func isValidEmailFormat(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// パスワードのよくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":    {},
		"password123": {},
		"12345678":    {},
		"123456789":   {},
		"1234567890":  {},
		"qwertyuiop":  {},
		"letmein123":  {},
		"admin123":    {},
	}

	_, ok := weak[normalized]
	return ok
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
