// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ListingSanitizerService は掲載フォームから入力された物件テキストを
// サニタイズし、XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーを用いる。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ListingSanitizerService は物件テキストのサニタイズ機能のインターフェースを定義する。
// 物件の保存前に使用される。
type ListingSanitizerService interface {
	// SanitizeTitle はタイトルからすべてのHTMLタグを除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	SanitizeTitle(raw string) string

	// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
	// 段落・改行・箇条書き・強調のみを許可し、script等は除去される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeDescription(raw string) string
}

// listingSanitizer はListingSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type listingSanitizer struct {
	strict      *bluemonday.Policy
	description *bluemonday.Policy
}

// NewListingSanitizer はListingSanitizerServiceの新しいインスタンスを生成する。
//
// ポリシーの内容:
//   - タイトル: 全タグ除去（StrictPolicy）
//   - 説明文の許可タグ: p, br, ul, ol, li, strong, em
//   - リンク・画像・iframe・script・on*イベント属性は除去される
func NewListingSanitizer() *listingSanitizer {
	description := bluemonday.NewPolicy()
	description.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	return &listingSanitizer{
		strict:      bluemonday.StrictPolicy(),
		description: description,
	}
}

// SanitizeTitle はタイトルからすべてのHTMLタグを除去する。
func (s *listingSanitizer) SanitizeTitle(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}

// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
func (s *listingSanitizer) SanitizeDescription(raw string) string {
	return strings.TrimSpace(s.description.Sanitize(raw))
}
