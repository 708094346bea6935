package usecase

import (
	"app/internal/blacklist"
	"app/internal/domain/model"
	"app/internal/password"
	"app/internal/repository"
	"app/internal/token"

	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignUp(ctx context.Context, username, email, pass, passConfirm string) error
	ValidateNewPassword(pass, passConfirm string) error
}

// メール送信の約束。失敗はログに残すだけで処理は止めない。
type Mailer interface {
	SendConfirmation(ctx context.Context, email, username, token string) error
	SendPasswordReset(ctx context.Context, email, username, token string) error
}

// テストで時刻を固定するための約束
type Clock interface {
	Now() time.Time
}

type UserDTO struct {
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

type SignUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type SignUpResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

type SignInRequest struct {
	// usernameでもemailでも良い
	Login    string `json:"login"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Message      string  `json:"message"`
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// AuthUsecaseは認証とセッションの一生を担当する。
// 可変な状態は持たない。全部DBと失効キャッシュ側にある。
type AuthUsecase struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	hasher    *password.BcryptHasher
	codec     *token.Codec
	revoked   *blacklist.Cache
	mailer    Mailer
	validator AuthValidator
	clock     Clock
	// refresh時に発行元IPを照合するか（deployで選ぶ）
	ipPinning bool
	log       *slog.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher *password.BcryptHasher,
	codec *token.Codec,
	revoked *blacklist.Cache,
	mailer Mailer,
	validator AuthValidator,
	clock Clock,
	ipPinning bool,
	log *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		codec:     codec,
		revoked:   revoked,
		mailer:    mailer,
		validator: validator,
		clock:     clock,
		ipPinning: ipPinning,
		log:       log,
	}
}

// SignUpはユーザーを作って確認メールを送る。
// メール送信に失敗しても登録自体は成功として返す。
func (u *AuthUsecase) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	if err := u.validator.ValidateSignUp(ctx, req.Username, req.Email, req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, u.unexpected("hash password", err)
	}

	now := u.clock.Now()
	user := &model.User{
		UUID:              uuid.NewString(),
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      pwHash,
		PasswordVersion:   0,
		Confirmed:         false,
		PasswordUpdatedAt: now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, fail(ErrConflict, "username or email already in use")
		}
		return nil, u.unexpected("create user", err)
	}

	u.sendConfirmation(ctx, user)

	return &SignUpResponse{
		Message: "user created. check your email to confirm your account",
		User:    toUserDTO(user),
	}, nil
}

// Confirmは確認トークンを検証してconfirmedを立てる。
func (u *AuthUsecase) Confirm(ctx context.Context, rawToken string) (*SuccessResponse, error) {
	claims, err := u.codec.VerifyConfirm(rawToken)
	if err != nil {
		return nil, fail(ErrForbidden, "invalid or expired confirmation link")
	}

	user, err := u.users.FindByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "user not found")
		}
		return nil, u.unexpected("find user", err)
	}

	// パスワードが変わっていたら発行時のトークンは全部無効
	if claims.PasswordVersion != user.PasswordVersion {
		return nil, fail(ErrForbidden, "invalid or expired confirmation link")
	}

	if user.Confirmed {
		return &SuccessResponse{Message: "email already confirmed"}, nil
	}

	user.Confirmed = true
	if err := u.users.Update(ctx, user); err != nil {
		return nil, u.unexpected("update user", err)
	}

	return &SuccessResponse{Message: "email confirmed"}, nil
}

// RequestPasswordResetはリセットメールを送る。
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) (*SuccessResponse, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "user not found")
		}
		return nil, u.unexpected("find user", err)
	}

	resetToken, _, err := u.codec.SignReset(user.UUID, user.Username, user.PasswordVersion)
	if err != nil {
		return nil, u.unexpected("sign reset token", err)
	}

	if err := u.mailer.SendPasswordReset(ctx, user.Email, user.Username, resetToken); err != nil {
		// 送信失敗はログのみ（flowは止めない）
		u.log.Error("send password reset mail", "email", user.Email, "error", err)
	}

	return &SuccessResponse{Message: "password reset link sent"}, nil
}

// ResetPasswordは新パスワードを保存してpassword_versionを上げる。
// これで発行済みのrefresh/confirm/resetトークンは全部無効になる。
func (u *AuthUsecase) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*SuccessResponse, error) {
	claims, err := u.codec.VerifyReset(req.Token)
	if err != nil {
		return nil, fail(ErrForbidden, "invalid or expired reset link")
	}

	if err := u.validator.ValidateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	user, err := u.users.FindByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "user not found")
		}
		return nil, u.unexpected("find user", err)
	}

	if claims.PasswordVersion != user.PasswordVersion {
		return nil, fail(ErrForbidden, "invalid or expired reset link")
	}

	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, u.unexpected("hash password", err)
	}

	user.PasswordHash = pwHash
	user.PasswordVersion++
	user.PasswordUpdatedAt = u.clock.Now()

	if err := u.users.Update(ctx, user); err != nil {
		return nil, u.unexpected("update user", err)
	}

	return &SuccessResponse{Message: "password updated. sign in with your new password"}, nil
}

// SignInはパスワードを照合してaccess+refreshを発行し、セッション行を作る。
func (u *AuthUsecase) SignIn(ctx context.Context, req SignInRequest, clientIP string) (*SignInResponse, error) {
	user, err := u.users.FindByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "user not found")
		}
		return nil, u.unexpected("find user", err)
	}

	if !u.hasher.Verify(req.Password, user.PasswordHash) {
		// 経過日数はただのヒント（セキュリティ制御ではない）
		days := int(u.clock.Now().Sub(user.PasswordUpdatedAt).Hours() / 24)
		return nil, fail(ErrUnauthorized,
			fmt.Sprintf("wrong password. you changed your password %d days ago", days))
	}

	if !user.Confirmed {
		u.sendConfirmation(ctx, user)
		return nil, fail(ErrUnauthorized, "email isn't confirmed. a new confirmation link was sent")
	}

	accessToken, _, err := u.codec.SignAccess(user.UUID, user.Username)
	if err != nil {
		return nil, u.unexpected("sign access token", err)
	}

	tokenID := uuid.NewString()
	refreshToken, refreshExp, err := u.codec.SignRefresh(user.UUID, user.Username, user.PasswordVersion, tokenID)
	if err != nil {
		return nil, u.unexpected("sign refresh token", err)
	}

	session := &model.RefreshSession{
		TokenID:        tokenID,
		UserID:         user.ID,
		IssuingAddress: clientIP,
		ExpiresAt:      refreshExp,
	}

	if err := u.sessions.Insert(ctx, session); err != nil {
		if !errors.Is(err, repository.ErrSessionExists) {
			return nil, u.unexpected("insert session", err)
		}

		// 同時ログインで負けた側。既存行を読んでそちらに相乗りする。
		existing, ferr := u.sessions.FindByUserID(ctx, user.ID)
		if ferr != nil {
			return nil, u.unexpected("read existing session", ferr)
		}

		if u.clock.Now().After(existing.ExpiresAt) {
			// 期限切れの行は上書き
			_ = u.sessions.Delete(ctx, existing.TokenID)
			if rerr := u.sessions.Insert(ctx, session); rerr != nil {
				return nil, u.unexpected("reinsert session", rerr)
			}
		} else {
			// 生きている行のtoken_idでrefreshを作り直す。
			// どちらの呼び出しも、保存された唯一の行を指すトークンを返す。
			refreshToken, _, err = u.codec.SignRefresh(user.UUID, user.Username, user.PasswordVersion, existing.TokenID)
			if err != nil {
				return nil, u.unexpected("re-sign refresh token", err)
			}
		}
	}

	return &SignInResponse{
		Message:      "signed in",
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refreshはrefresh tokenを検証してaccess tokenだけ発行し直す。
// refresh token自体は回転させない。
func (u *AuthUsecase) Refresh(ctx context.Context, rawRefresh string, clientIP string) (*RefreshResponse, error) {
	claims, err := u.codec.VerifyRefresh(rawRefresh)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, fail(ErrUnauthorized, "session expired. sign in again")
		}
		return nil, fail(ErrUnauthorized, "invalid session")
	}

	user, err := u.users.FindByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrUnauthorized, "invalid session")
		}
		return nil, u.unexpected("find user", err)
	}

	// 発行後にパスワードが変わっていたら無効
	if claims.PasswordVersion != user.PasswordVersion {
		return nil, fail(ErrUnauthorized, "session expired. sign in again")
	}

	// サインアウト済みなら自然失効前でも弾く
	if u.revoked.Contains(user.ID, claims.TokenID) {
		return nil, fail(ErrUnauthorized, "no session found. sign in first")
	}

	session, err := u.sessions.FindByTokenID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fail(ErrUnauthorized, "no session found. sign in first")
		}
		return nil, u.unexpected("find session", err)
	}

	if u.clock.Now().After(session.ExpiresAt) {
		_ = u.sessions.Delete(ctx, session.TokenID)
		return nil, fail(ErrUnauthorized, "session expired. sign in again")
	}

	if u.ipPinning && session.IssuingAddress != "" && clientIP != session.IssuingAddress {
		return nil, fail(ErrUnauthorized, "ip change detected. sign in again")
	}

	accessToken, accessExp, err := u.codec.SignAccess(user.UUID, user.Username)
	if err != nil {
		return nil, u.unexpected("sign access token", err)
	}

	return &RefreshResponse{
		Message:     "token refreshed",
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(u.clock.Now()).Seconds()),
	}, nil
}

// SignOutはrefresh tokenを残り寿命ぶんブラックリストに入れ、セッション行を消す。
func (u *AuthUsecase) SignOut(ctx context.Context, rawRefresh string) (*SuccessResponse, error) {
	claims, err := u.codec.VerifyRefresh(rawRefresh)
	if err != nil {
		return nil, fail(ErrUnauthorized, "invalid session")
	}

	user, err := u.users.FindByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrUnauthorized, "invalid session")
		}
		return nil, u.unexpected("find user", err)
	}

	remaining := claims.ExpiresAt.Time.Sub(u.clock.Now())
	u.revoked.Add(user.ID, claims.TokenID, remaining)

	// 行がもう無いのは正常（2回目のサインアウトなど）
	if err := u.sessions.Delete(ctx, claims.TokenID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, u.unexpected("delete session", err)
	}

	return &SuccessResponse{Message: "signed out"}, nil
}

// Meはaccess tokenのuuidから自分の情報を返す。
func (u *AuthUsecase) Me(ctx context.Context, userUUID string) (*UserDTO, error) {
	user, err := u.users.FindByUUID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "user not found")
		}
		return nil, u.unexpected("find user", err)
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// 確認メールを送る。失敗しても呼び出し元のflowは止めない。
func (u *AuthUsecase) sendConfirmation(ctx context.Context, user *model.User) {
	confirmToken, _, err := u.codec.SignConfirm(user.UUID, user.Username, user.PasswordVersion)
	if err != nil {
		u.log.Error("sign confirm token", "email", user.Email, "error", err)
		return
	}
	if err := u.mailer.SendConfirmation(ctx, user.Email, user.Username, confirmToken); err != nil {
		u.log.Error("send confirmation mail", "email", user.Email, "error", err)
	}
}

// 想定外のエラー。詳細はログへ、レスポンスは固定文言。
func (u *AuthUsecase) unexpected(op string, err error) error {
	u.log.Error(op, "error", err)
	return fail(ErrUnexpected, "unexpected error")
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		UUID:      u.UUID,
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
	}
}
