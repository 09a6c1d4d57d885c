// Package model はドメインモデルを定義する。
package model

import "time"

// TransactionType は物件の取引種別を表す。
type TransactionType string

const (
	// TransactionSale は売買物件。
	TransactionSale TransactionType = "sale"
	// TransactionRent は賃貸物件。
	TransactionRent TransactionType = "rent"
)

// ParseTransactionType は文字列をTransactionTypeに変換する。
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionSale:
		return TransactionSale, nil
	case TransactionRent:
		return TransactionRent, nil
	default:
		return "", NewInvalidTransactionTypeError(s)
	}
}

// Property は掲載物件を表す。
// 物件はちょうど1人のオーナー（OwnerID）に所有される。
// クライアントからの更新・削除操作は存在しない。
type Property struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	Images          []string
	Price           int64
	Area            int
	Bedrooms        int
	Bathrooms       int
	Floor           int
	Neighborhood    string
	City            string
	TransactionType TransactionType
	ContactPhone    string
	CreatedAt       time.Time
}

// ImageFile は掲載フォームで選択されたローカル画像を表す。
// アップロード完了までの一時的な入力で、永続化されない。
type ImageFile struct {
	Name string
	Data []byte
}

// PropertyDraft は掲載フォームから収集される未保存の物件データ。
// 画像のアップロード（またはプレースホルダー代入）が完了した後に
// 永続化されたPropertyへ変換される。
type PropertyDraft struct {
	Title           string
	Description     string
	Price           int64
	Area            int
	Bedrooms        int
	Bathrooms       int
	Floor           int
	Neighborhood    string
	TransactionType TransactionType
	ContactPhone    string

	// ImageFiles はアップロード対象のローカル画像。
	ImageFiles []ImageFile
	// RemoteImageURLs はURL指定で取り込む外部画像。
	// SSRFガード付きクライアントで取得してから再アップロードされる。
	RemoteImageURLs []string
}
