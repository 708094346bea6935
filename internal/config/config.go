package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	AccessPrivateKeyFile string // RS256秘密鍵（PEM）のパス
	AccessPublicKeyFile  string // RS256公開鍵（PEM）のパス
	RefreshSecret        string // refresh token署名シークレット（HS256）
	ConfirmSecret        string // confirm token署名シークレット（HS256）
	ResetSecret          string // reset token署名シークレット（HS256）

	TokenIssuer string // JWTのiss

	AccessTTL  time.Duration // access tokenの有効期限
	RefreshTTL time.Duration // refresh tokenの有効期限
	ConfirmTTL time.Duration // confirm tokenの有効期限
	ResetTTL   time.Duration // reset tokenの有効期限

	RefreshIPPinning bool // refresh時に発行元IPを照合するか

	SMTPHost     string // 空ならメールはログ出力のみ
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	GoEnv string // dev/prod
	FEURL string // フロントURL（確認・リセットリンクに使う）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		AccessPrivateKeyFile: os.Getenv("ACCESS_PRIVATE_KEY_FILE"),
		AccessPublicKeyFile:  os.Getenv("ACCESS_PUBLIC_KEY_FILE"),
		RefreshSecret:        os.Getenv("REFRESH_SECRET"),
		ConfirmSecret:        os.Getenv("CONFIRM_SECRET"),
		ResetSecret:          os.Getenv("RESET_SECRET"),

		TokenIssuer: getenv("TOKEN_ISSUER", "app"),

		AccessTTL:  durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: durationEnv("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ConfirmTTL: durationEnv("CONFIRM_TOKEN_TTL", time.Hour),
		ResetTTL:   durationEnv("RESET_TOKEN_TTL", 30*time.Minute),

		RefreshIPPinning: boolEnv("REFRESH_IP_PINNING", false),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     intEnv("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.AccessPrivateKeyFile == "" {
		return Config{}, fmt.Errorf("ACCESS_PRIVATE_KEY_FILE is required")
	}
	if cfg.AccessPublicKeyFile == "" {
		return Config{}, fmt.Errorf("ACCESS_PUBLIC_KEY_FILE is required")
	}
	if cfg.RefreshSecret == "" {
		return Config{}, fmt.Errorf("REFRESH_SECRET is required")
	}
	if cfg.ConfirmSecret == "" {
		return Config{}, fmt.Errorf("CONFIRM_SECRET is required")
	}
	if cfg.ResetSecret == "" {
		return Config{}, fmt.Errorf("RESET_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func boolEnv(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
