// Package property は物件の取得・作成と絞り込みのドメインロジックを提供する。
package property

import "github.com/hitoshi/aqar/internal/model"

// FilterAll は絞り込み条件のワイルドカード値。
const FilterAll = "All"

// FilterCriteria は物件一覧の絞り込み条件。
// 各条件はワイルドカード（"All"または空文字）か完全一致のいずれか。
// 部分一致・あいまい一致は行わない。
type FilterCriteria struct {
	Neighborhood    string
	TransactionType string
	// OwnerID はオーナーダッシュボード用。自分の物件のみに制限する。
	OwnerID string
}

// Filter は絞り込み条件をすべてANDで適用した部分列を返す純粋関数。
// 入力の順序を維持し、入力スライスを変更しない。
// 条件の適用順序は結果に影響しない。
func Filter(properties []*model.Property, criteria FilterCriteria) []*model.Property {
	result := make([]*model.Property, 0, len(properties))
	for _, p := range properties {
		if !matches(criteria.Neighborhood, p.Neighborhood) {
			continue
		}
		if !matches(criteria.TransactionType, string(p.TransactionType)) {
			continue
		}
		if !matches(criteria.OwnerID, p.OwnerID) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// matches は条件値が一致するかを判定する。
// ワイルドカード（"All"または空文字）は常に一致する。
func matches(criterion, value string) bool {
	if criterion == "" || criterion == FilterAll {
		return true
	}
	return criterion == value
}
