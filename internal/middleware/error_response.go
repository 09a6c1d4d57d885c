package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/aqar/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteError はエラーをHTTPレスポンスに変換する。
// APIErrorの場合はそのコードに応じたステータスで統一フォーマットを返し、
// それ以外は詳細をログのみに残して500を返す。
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		WriteErrorResponse(w, statusForCode(apiErr.Code), apiErr)
		return
	}
	WriteInternalServerError(w)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// statusForCode はエラーコードからHTTPステータスコードを決定する。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeBadCredentials, model.ErrCodeEmailNotConfirmed:
		return http.StatusUnauthorized
	case model.ErrCodeOwnerRoleRequired:
		return http.StatusForbidden
	case model.ErrCodeEmailAlreadyRegistered:
		return http.StatusConflict
	case model.ErrCodeUnknownRole, model.ErrCodeInvalidTransactionType,
		model.ErrCodeInvalidImageURL, model.ErrCodeInvalidConfirmToken:
		return http.StatusBadRequest
	case model.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case model.ErrCodeAllUploadsFailed:
		return http.StatusBadGateway
	case model.ErrCodeStoreFetchFailed, model.ErrCodeStoreInsertFailed:
		// リトライ可能なエラーとして503を返す
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
