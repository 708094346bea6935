package usecase

import "errors"

// handlerがHTTPステータスに変換するエラー分類。
var (
	//404 対象なし
	ErrNotFound = errors.New("not found")
	//401 認証失敗・セッション無効
	ErrUnauthorized = errors.New("unauthorized")
	//403 確認・リセットトークン不正、bearer欠落
	ErrForbidden = errors.New("forbidden")
	//409 unique重複
	ErrConflict = errors.New("conflict")
	//400 入力不正
	ErrBadRequest = errors.New("bad request")
	//500 それ以外（ログに詳細、レスポンスは固定文言のみ）
	ErrUnexpected = errors.New("unexpected error")
)

// 分類＋ユーザー向けメッセージ。
// errors.Is(err, ErrUnauthorized) のように分類で照合できる。
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// レスポンスに載せる文言を取り出す。
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
