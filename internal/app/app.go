package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/example/identity-service/config"
	"github.com/example/identity-service/internal/adapters/broker"
	"github.com/example/identity-service/internal/adapters/filestorage"
	httpport "github.com/example/identity-service/internal/adapters/http"
	"github.com/example/identity-service/internal/adapters/http/handlers"
	mw "github.com/example/identity-service/internal/adapters/http/middleware"
	natsadapter "github.com/example/identity-service/internal/adapters/nats"
	"github.com/example/identity-service/internal/adapters/notify"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/oauth"
	"github.com/example/identity-service/internal/repo"
	"github.com/example/identity-service/internal/service"
	pkglog "github.com/example/identity-service/pkg/log"
)

type App struct {
	cfg       *config.Config
	logger    pkglog.Logger
	db        *gorm.DB
	publisher broker.Publisher
	echo      *echo.Echo
	natsConn  *nats.Conn
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	appLogger := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	memberRepo := repo.NewMemberRepository(db)
	blockRepo := repo.NewMemberBlockRepository(db)
	refreshRepo := repo.NewRefreshTokenRepository(db)

	kakaoClient := oauth.NewKakaoClient(cfg.KakaoAdminKey)
	appleClient, err := oauth.NewAppleClient(cfg.AppleTeamID, cfg.AppleClientID, cfg.AppleKeyID, cfg.ApplePrivateKey)
	if err != nil {
		return nil, err
	}
	googleClient := oauth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	providers := oauth.Registry{
		domain.SocialKakao:  kakaoClient,
		domain.SocialApple:  appleClient,
		domain.SocialGoogle: googleClient,
	}

	var publisher broker.Publisher
	publisher, err = broker.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Printf("rabbitmq init failed: %v", err)
		publisher = nil
	}

	filestorageClient := filestorage.NewHTTPClient(cfg.FileStorageURL, 5*time.Second)
	notifier := notify.NewWebhookNotifier(cfg.RegistrationWebhookURL)

	tokenService, err := service.NewTokenService(cfg, refreshRepo)
	if err != nil {
		return nil, err
	}
	nicknames := service.NewNicknameGenerator(memberRepo)
	authService := service.NewAuthService(appLogger, providers, memberRepo, nicknames, tokenService, notifier, publisher)
	memberService := service.NewMemberService(appLogger, memberRepo, blockRepo, filestorageClient)
	lifecycleService := service.NewLifecycleService(appLogger, memberRepo, map[domain.SocialType]service.UnlinkStrategy{
		domain.SocialKakao:  service.KakaoUnlink{Client: kakaoClient},
		domain.SocialApple:  service.AppleUnlink{Refresher: appleClient, Revoker: appleClient},
		domain.SocialGoogle: service.GoogleUnlink{Refresher: googleClient, Revoker: googleClient},
	}, tokenService, filestorageClient, publisher)

	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService, lifecycleService)
	authMW := mw.NewAuthMiddleware(appLogger, tokenService, memberRepo)

	e := echo.New()
	router := httpport.NewRouter(cfg, authHandler, memberHandler, authMW)
	router.Setup(e)

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("nats connection failed: %v", err)
		} else {
			rpc := natsadapter.Server{Conn: natsConn}
			verifyHandler := natsadapter.NewVerifyHandler(tokenService, memberRepo)
			_ = rpc.Subscribe(cfg.NATSVerifySubject, cfg.AppName, verifyHandler.Handle)
		}
	}

	return &App{cfg: cfg, logger: appLogger, db: db, publisher: publisher, echo: e, natsConn: natsConn}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(":" + a.cfg.AppPort)
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.GormLogLevel {
	case "error":
		level = logger.Error
	case "warn":
		level = logger.Warn
	case "info":
		level = logger.Info
	}
	return logger.Default.LogMode(level)
}
