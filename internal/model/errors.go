// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, property, upload, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeBadCredentials          = "BAD_CREDENTIALS"
	ErrCodeEmailNotConfirmed       = "EMAIL_NOT_CONFIRMED"
	ErrCodeEmailAlreadyRegistered  = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUnknownRole             = "UNKNOWN_ROLE"
	ErrCodeInvalidTransactionType  = "INVALID_TRANSACTION_TYPE"
	ErrCodeStoreFetchFailed        = "STORE_FETCH_FAILED"
	ErrCodeStoreInsertFailed       = "STORE_INSERT_FAILED"
	ErrCodeAllUploadsFailed        = "ALL_UPLOADS_FAILED"
	ErrCodeInvalidImageURL         = "INVALID_IMAGE_URL"
	ErrCodeInvalidConfirmToken     = "INVALID_CONFIRM_TOKEN"
	ErrCodeProfileNotFound         = "PROFILE_NOT_FOUND"
	ErrCodeOwnerRoleRequired       = "OWNER_ROLE_REQUIRED"
)

// NewBadCredentialsError は認証情報不一致エラーを生成する。
func NewBadCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeBadCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailNotConfirmedError はメール未確認エラーを生成する。
func NewEmailNotConfirmedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotConfirmed,
		Message:  "メールアドレスの確認が完了していません。",
		Category: "auth",
		Action:   "登録時に送信された確認メールのリンクを開いてください。",
	}
}

// NewEmailAlreadyRegisteredError はメール重複登録エラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "サインインするか、別のメールアドレスで登録してください。",
	}
}

// NewInvalidConfirmTokenError は無効な確認トークンエラーを生成する。
func NewInvalidConfirmTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidConfirmToken,
		Message:  "確認トークンが無効です。",
		Category: "auth",
		Action:   "確認メールのリンクを確認するか、再度登録してください。",
	}
}

// NewUnknownRoleError は不明な役割エラーを生成する。
// 役割が解釈できない場合は空白画面ではなく明示的なエラーとして扱う。
func NewUnknownRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownRole,
		Message:  fmt.Sprintf("不明な役割です: %s", role),
		Category: "auth",
		Action:   "サインインし直してください。解決しない場合は管理者に連絡してください。",
	}
}

// NewInvalidTransactionTypeError は無効な取引種別エラーを生成する。
func NewInvalidTransactionTypeError(t string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransactionType,
		Message:  fmt.Sprintf("無効な取引種別です: %s", t),
		Category: "validation",
		Action:   "取引種別には sale または rent を指定してください。",
	}
}

// NewStoreFetchFailedError は物件一覧取得失敗エラーを生成する。
// 握りつぶさず呼び出し元へ返し、リトライ可能なエラーとして表示する。
func NewStoreFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreFetchFailed,
		Message:  "物件一覧の取得に失敗しました。",
		Category: "property",
		Action:   "しばらく待ってから再読み込みしてください。",
	}
}

// NewStoreInsertFailedError は物件登録失敗エラーを生成する。
func NewStoreInsertFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreInsertFailed,
		Message:  "物件の登録に失敗しました。",
		Category: "property",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewAllUploadsFailedError は画像アップロード全滅エラーを生成する。
// 一部失敗は許容されるが、全件失敗した場合のみ掲載を中止する。
func NewAllUploadsFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAllUploadsFailed,
		Message:  "画像のアップロードにすべて失敗しました。",
		Category: "upload",
		Action:   "通信環境を確認して再度お試しください。",
	}
}

// NewInvalidImageURLError は無効な画像URLエラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("無効な画像URLです: %s", reason),
		Category: "validation",
		Action:   "公開されているWebサイトの画像URLを入力してください。",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  fmt.Sprintf("プロフィールが見つかりません: %s", userID),
		Category: "auth",
		Action:   "サインインし直してください。",
	}
}

// NewOwnerRoleRequiredError はオーナー権限必須エラーを生成する。
func NewOwnerRoleRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeOwnerRoleRequired,
		Message:  "この操作はオーナーのみ実行できます。",
		Category: "auth",
		Action:   "オーナーアカウントでサインインしてください。",
	}
}
