package usecase

import (
	"context"
	"errors"
	"net/mail"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

type CreateEmployeeInput struct {
	Email    string
	Password string
}

// 従業員アカウントの作成（管理者のみ）
type EmployeeManagementUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	hasher   PasswordHasher
	notifier Notifier
	audit    *ActivityLogUsecase
	logger   *zap.Logger
}

func NewEmployeeManagementUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	hasher PasswordHasher,
	notifier Notifier,
	audit *ActivityLogUsecase,
	logger *zap.Logger,
) *EmployeeManagementUsecase {
	return &EmployeeManagementUsecase{
		tx:       tx,
		users:    users,
		hasher:   hasher,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// CreateEmployee はpseudoをメールのローカル部から作る。
// 初期パスワードは管理者が決めたものなので変更は強制しない。
func (u *EmployeeManagementUsecase) CreateEmployee(ctx context.Context, actor model.Principal, in CreateEmployeeInput) (model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return model.User{}, err
	}

	employee, err := u.prepareAccount(ctx, model.RoleEmployee, in)
	if err != nil {
		return model.User{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().Create(ctx, employee); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return Conflict("email or pseudo already exists")
			}
			return Internal("db error", err)
		}
		return u.audit.Record(ctx, r.ActivityLogs(), actor, model.ActivityEmployeeCreated, userTarget(employee), map[string]any{
			"email": employee.Email,
		})
	})
	if err != nil {
		if CodeOf(err) == CodeInternal {
			u.logger.Error("employee create failed", zap.Error(err))
		}
		return model.User{}, passAppError(err, "db error")
	}
	metrics.AccountActionsTotal.WithLabelValues(string(model.RoleEmployee), "created").Inc()

	to := recipientOf(employee.Email, employee.Pseudo)
	notifyBestEffort(ctx, u.logger, NotifyWelcome, to, func(ctx context.Context) error {
		return u.notifier.Welcome(ctx, to)
	})
	return *employee, nil
}

// BootstrapAdmin は最初の管理者を作る（CLI専用）。操作者がいないので監査ログは書かない。
func (u *EmployeeManagementUsecase) BootstrapAdmin(ctx context.Context, in CreateEmployeeInput) (model.User, error) {
	admin, err := u.prepareAccount(ctx, model.RoleAdmin, in)
	if err != nil {
		return model.User{}, err
	}
	if err := u.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.User{}, Conflict("email or pseudo already exists")
		}
		u.logger.Error("admin create failed", zap.Error(err))
		return model.User{}, Internal("db error", err)
	}
	metrics.AccountActionsTotal.WithLabelValues(string(model.RoleAdmin), "created").Inc()
	u.logger.Info("admin account created", zap.Int64("user_id", admin.ID), zap.String("pseudo", admin.Pseudo))
	return *admin, nil
}

// メール・パスワードを検証し、pseudoを決めてハッシュ済みのアカウントを組み立てる
func (u *EmployeeManagementUsecase) prepareAccount(ctx context.Context, role model.Role, in CreateEmployeeInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, Validation("invalid email format")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	pseudo := DerivePseudo(email)
	if len(pseudo) < 2 {
		return nil, Validation("cannot derive a pseudo from this email")
	}

	taken, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, u.dbError(err)
	}
	if taken {
		return nil, Conflict("email already exists")
	}
	taken, err = u.users.ExistsByPseudo(ctx, pseudo)
	if err != nil {
		return nil, u.dbError(err)
	}
	if taken {
		return nil, Conflict("pseudo already exists")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.logger.Error("password hash failed", zap.Error(err))
		return nil, Internal("password hash failed", err)
	}
	return &model.User{
		Pseudo:       pseudo,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}, nil
}

func (u *EmployeeManagementUsecase) dbError(err error) error {
	u.logger.Error("user lookup failed", zap.Error(err))
	return Internal("db error", err)
}
