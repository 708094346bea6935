package main

import (
	"log/slog"
	"os"
	"time"

	"app/internal/blacklist"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/mailer"
	"app/internal/password"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// .envはあれば読む（コンテナでは無いのが普通）
	if err := godotenv.Load(); err != nil {
		log.Info(".env not loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Error("connect db", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshSession{},
	); err != nil {
		log.Error("migrate", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionGormRepository(gormDB)

	//鍵は起動時に一度だけ読む
	privPEM, err := os.ReadFile(cfg.AccessPrivateKeyFile)
	if err != nil {
		log.Error("read access private key", "error", err)
		os.Exit(1)
	}
	pubPEM, err := os.ReadFile(cfg.AccessPublicKeyFile)
	if err != nil {
		log.Error("read access public key", "error", err)
		os.Exit(1)
	}
	priv, pub, err := token.ParseRSAKeyPair(privPEM, pubPEM)
	if err != nil {
		log.Error("parse access key pair", "error", err)
		os.Exit(1)
	}

	codec := token.NewCodec(token.Options{
		Issuer:           cfg.TokenIssuer,
		AccessPrivateKey: priv,
		AccessPublicKey:  pub,
		RefreshSecret:    []byte(cfg.RefreshSecret),
		ConfirmSecret:    []byte(cfg.ConfirmSecret),
		ResetSecret:      []byte(cfg.ResetSecret),
		AccessTTL:        cfg.AccessTTL,
		RefreshTTL:       cfg.RefreshTTL,
		ConfirmTTL:       cfg.ConfirmTTL,
		ResetTTL:         cfg.ResetTTL,
	})

	//bcrypt（会員登録・リセット：Hash / ログイン：Verify）
	hasher := password.NewBcryptHasher(12)

	//失効キャッシュ
	revoked := blacklist.New(10 * time.Minute)

	//SMTP未設定ならログ出力のみのmailer
	var mail usecase.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.FEURL, log)
	} else {
		mail = mailer.NewLogMailer(log)
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo,
		sessionRepo,
		hasher,
		codec,
		revoked,
		mail,
		validator.NewAuthValidator(),
		&realClock{},
		cfg.RefreshIPPinning,
		log,
	)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)

	//Server起動
	e := server.New(authH, codec)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
