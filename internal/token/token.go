package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// 期限切れ（署名自体は正しい）
	ErrExpired = errors.New("token expired")
	// 署名・形式・種別が不正
	ErrInvalid = errors.New("token invalid")
)

// subに入れるトークン種別。検証時にも照合して
// 別種のトークンの流用を防ぐ。
const (
	subjectAccess  = "access"
	subjectRefresh = "refresh"
	subjectConfirm = "confirm"
	subjectReset   = "reset"
)

// access token（RS256、公開鍵だけで検証できる）
type AccessClaims struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// refresh token（HS256、セッション行のtoken_idを運ぶ）
type RefreshClaims struct {
	UUID            string `json:"uuid"`
	Username        string `json:"username"`
	PasswordVersion int    `json:"password_version"`
	TokenID         string `json:"token_id"`
	jwt.RegisteredClaims
}

// confirm / reset 共通のpayload（HS256、シークレットは別々）
type ActionClaims struct {
	UUID            string `json:"uuid"`
	Username        string `json:"username"`
	PasswordVersion int    `json:"password_version"`
	jwt.RegisteredClaims
}

type Options struct {
	Issuer string

	// access用の鍵ペア。検証専用のインスタンスはPrivateKeyをnilにできる。
	AccessPrivateKey *rsa.PrivateKey
	AccessPublicKey  *rsa.PublicKey

	RefreshSecret []byte
	ConfirmSecret []byte
	ResetSecret   []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ConfirmTTL time.Duration
	ResetTTL   time.Duration
}

// Codecは4種のトークンの発行と検証を担当する。
// 鍵・シークレットは起動時に一度だけ渡す（実行中の差し替えはしない）。
type Codec struct {
	opts Options
	now  func() time.Time
}

func NewCodec(opts Options) *Codec {
	return &Codec{opts: opts, now: time.Now}
}

// PEMからRS256の鍵ペアを読み込む。
func ParseRSAKeyPair(privPEM, pubPEM []byte) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// access tokenを発行する。
func (c *Codec) SignAccess(userUUID, username string) (string, time.Time, error) {
	if c.opts.AccessPrivateKey == nil {
		return "", time.Time{}, errors.New("access private key is not configured")
	}

	now := c.now()
	exp := now.Add(c.opts.AccessTTL)

	claims := AccessClaims{
		UUID:             userUUID,
		Username:         username,
		RegisteredClaims: c.registered(subjectAccess, now, exp),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := t.SignedString(c.opts.AccessPrivateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// access tokenを公開鍵で検証する。
func (c *Codec) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	err := c.parse(raw, claims, subjectAccess, "RS256", func(t *jwt.Token) (interface{}, error) {
		return c.opts.AccessPublicKey, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// refresh tokenを発行する。tokenIDはセッション行の主キー。
func (c *Codec) SignRefresh(userUUID, username string, passwordVersion int, tokenID string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.opts.RefreshTTL)

	claims := RefreshClaims{
		UUID:             userUUID,
		Username:         username,
		PasswordVersion:  passwordVersion,
		TokenID:          tokenID,
		RegisteredClaims: c.registered(subjectRefresh, now, exp),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.opts.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (c *Codec) VerifyRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	err := c.parse(raw, claims, subjectRefresh, "HS256", func(t *jwt.Token) (interface{}, error) {
		return c.opts.RefreshSecret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// メール確認用トークンを発行する。
func (c *Codec) SignConfirm(userUUID, username string, passwordVersion int) (string, time.Time, error) {
	return c.signAction(subjectConfirm, c.opts.ConfirmSecret, c.opts.ConfirmTTL, userUUID, username, passwordVersion)
}

func (c *Codec) VerifyConfirm(raw string) (*ActionClaims, error) {
	return c.verifyAction(raw, subjectConfirm, c.opts.ConfirmSecret)
}

// パスワードリセット用トークンを発行する。
func (c *Codec) SignReset(userUUID, username string, passwordVersion int) (string, time.Time, error) {
	return c.signAction(subjectReset, c.opts.ResetSecret, c.opts.ResetTTL, userUUID, username, passwordVersion)
}

func (c *Codec) VerifyReset(raw string) (*ActionClaims, error) {
	return c.verifyAction(raw, subjectReset, c.opts.ResetSecret)
}

func (c *Codec) signAction(subject string, secret []byte, ttl time.Duration, userUUID, username string, passwordVersion int) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(ttl)

	claims := ActionClaims{
		UUID:             userUUID,
		Username:         username,
		PasswordVersion:  passwordVersion,
		RegisteredClaims: c.registered(subject, now, exp),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (c *Codec) verifyAction(raw, subject string, secret []byte) (*ActionClaims, error) {
	claims := &ActionClaims{}
	err := c.parse(raw, claims, subject, "HS256", func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    c.opts.Issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

// パースと検証の共通部。algとsubを固定して他種トークンを弾く。
func (c *Codec) parse(raw string, claims jwt.Claims, subject, alg string, keyFunc jwt.Keyfunc) error {
	_, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(c.opts.Issuer),
		jwt.WithSubject(subject),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	return nil
}
