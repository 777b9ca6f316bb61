package main

import (
	"context"
	"fmt"
	"time"

	"charforge/internal/config"
	"charforge/internal/handler"
	"charforge/internal/infra/db"
	"charforge/internal/infra/notification"
	infraRepo "charforge/internal/infra/repository"
	"charforge/internal/logger"
	"charforge/internal/server"
	"charforge/internal/usecase"
	auth "charforge/internal/usecase/auth_usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bcryptCost = 12

// app は起動時に組み立てる依存一式
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  *redis.Client

	// 未設定ならgomail（テストで差し替える）
	mailer notification.Mailer

	handlers server.Handlers
	mw       handler.Middlewares
	staff    *usecase.EmployeeManagementUsecase
}

// bootstrap は設定・ロガー・DBだけ用意する
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.IsDevelopment(),
	})

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &app{cfg: cfg, logger: log, db: gormDB}, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// redisClient は初回だけ接続を確認する
func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	return client, nil
}

// smtpGateway は即時送信用（smtpモード・問い合わせ・ワーカー）
func (a *app) smtpGateway() (*notification.SMTPGateway, error) {
	renderer, err := notification.NewRenderer(a.cfg.App.BaseURL)
	if err != nil {
		return nil, err
	}
	mailer := a.mailer
	if mailer == nil {
		mailer = notification.NewGomailMailer(a.cfg.SMTP)
	}
	return notification.NewSMTPGateway(mailer, renderer, a.cfg.Contact.Inbox), nil
}

// notifiers は用途別の通知先。
// contact は送信失敗を呼び出し元に返す必要があるので、キューを挟まず同期で送る。
type notifiers struct {
	general usecase.Notifier
	contact usecase.Notifier
}

func (a *app) buildNotifiers(ctx context.Context) (notifiers, error) {
	switch a.cfg.Notification.Mode {
	case config.NotificationModeSMTP:
		gateway, err := a.smtpGateway()
		if err != nil {
			return notifiers{}, err
		}
		return notifiers{general: gateway, contact: gateway}, nil
	case config.NotificationModeRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return notifiers{}, err
		}
		queue, err := notification.NewRedisQueue(client, a.cfg.Redis.Channel)
		if err != nil {
			return notifiers{}, err
		}
		gateway, err := a.smtpGateway()
		if err != nil {
			return notifiers{}, err
		}
		return notifiers{general: queue, contact: gateway}, nil
	default:
		gateway := notification.NewLogGateway(a.logger.Named("notification"))
		return notifiers{general: gateway, contact: gateway}, nil
	}
}

// wire はRepository → Usecase → Handler の順に組み立てる
func (a *app) wire(ctx context.Context) error {
	ns, err := a.buildNotifiers(ctx)
	if err != nil {
		return err
	}
	notifier := ns.general

	//Repository（GORM実装）
	txm := infraRepo.NewTxManagerGorm(a.db)
	userRepo := infraRepo.NewUserGormRepository(a.db)
	characterRepo := infraRepo.NewCharacterGormRepository(a.db)
	classRepo := infraRepo.NewCharacterClassGormRepository(a.db)
	commentRepo := infraRepo.NewCommentGormRepository(a.db)
	activityRepo := infraRepo.NewActivityLogGormRepository(a.db)
	refreshRepo := infraRepo.NewRefreshTokenGormRepository(a.db)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	pager := usecase.NewPager(a.cfg.Paging.MaxPage, a.cfg.Paging.PageSize)
	secrets := usecase.UUIDSecretGenerator{}
	hasher := auth.NewBcryptPasswordHasher(bcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(a.cfg.JWT.Secret, a.cfg.JWT.AccessTTL)
	log := a.logger

	//Usecase
	audit := usecase.NewActivityLogUsecase(activityRepo, clock, pager, log.Named("audit"))
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, notifier, log.Named("auth"))
	sessionUC := auth.NewSessionUsecase(refreshRepo, userRepo, issuer, clock, a.cfg.JWT.RefreshTTL, log.Named("auth"))
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, sessionUC, clock, log.Named("auth"))
	passwordUC := auth.NewPasswordUsecase(userRepo, hasher, verifier, secrets, notifier, clock, log.Named("auth"))
	accountUC := usecase.NewAccountUsecase(txm, userRepo, hasher, verifier, secrets, notifier, audit, log.Named("account"))
	characterUC := usecase.NewCharacterUsecase(characterRepo, classRepo, pager, log.Named("character"))
	commentUC := usecase.NewCommentUsecase(commentRepo, characterRepo, log.Named("comment"))
	moderationUC := usecase.NewModerationUsecase(txm, characterRepo, userRepo, notifier, audit, pager, log.Named("moderation"))
	commentModUC := usecase.NewCommentModerationUsecase(txm, commentRepo, userRepo, notifier, audit, clock, pager, log.Named("moderation"))
	userModUC := usecase.NewUserModeration(txm, userRepo, notifier, audit, pager, log.Named("moderation"))
	employeeModUC := usecase.NewEmployeeManagement(txm, userRepo, notifier, audit, pager, log.Named("admin"))
	a.staff = usecase.NewEmployeeManagementUsecase(txm, userRepo, hasher, notifier, audit, log.Named("admin"))
	contactUC := usecase.NewContactUsecase(ns.contact, log.Named("contact"))

	//Handler
	a.handlers = server.Handlers{
		Auth:       handler.NewAuthHandler(registerUC, loginUC, sessionUC, passwordUC, accountUC),
		Characters: handler.NewCharacterHandler(characterUC),
		Comments:   handler.NewCommentHandler(commentUC),
		Moderation: handler.NewModerationHandler(moderationUC, commentModUC, userModUC, accountUC, audit),
		Employees:  handler.NewAdminEmployeeHandler(a.staff, employeeModUC),
		Contact:    handler.NewContactHandler(contactUC),
	}
	a.mw = server.BuildMiddlewares(issuer, userRepo)
	return nil
}

// newWorker はRedisキューを読んでSMTPで配送するワーカー
func (a *app) newWorker(ctx context.Context) (*notification.Worker, error) {
	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	gateway, err := a.smtpGateway()
	if err != nil {
		return nil, err
	}
	return notification.NewWorker(client, a.cfg.Redis.Channel, gateway, 0, a.logger.Named("worker")), nil
}
