package property

import (
	"testing"

	"github.com/hitoshi/aqar/internal/model"
)

func sampleProperties() []*model.Property {
	return []*model.Property{
		{ID: "p1", OwnerID: "o1", Neighborhood: "District 1", TransactionType: model.TransactionSale},
		{ID: "p2", OwnerID: "o2", Neighborhood: "District 2", TransactionType: model.TransactionRent},
		{ID: "p3", OwnerID: "o1", Neighborhood: "District 1", TransactionType: model.TransactionRent},
		{ID: "p4", OwnerID: "o3", Neighborhood: "District 3", TransactionType: model.TransactionSale},
	}
}

func idsOf(properties []*model.Property) []string {
	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestFilter は絞り込み条件のAND適用を検証する。
func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{name: "条件なしは恒等", criteria: FilterCriteria{}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "Allワイルドカードは恒等", criteria: FilterCriteria{Neighborhood: FilterAll, TransactionType: FilterAll}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "地区のみ", criteria: FilterCriteria{Neighborhood: "District 1"}, want: []string{"p1", "p3"}},
		{name: "取引種別のみ", criteria: FilterCriteria{TransactionType: "rent"}, want: []string{"p2", "p3"}},
		{name: "地区と取引種別のAND", criteria: FilterCriteria{Neighborhood: "District 1", TransactionType: "rent"}, want: []string{"p3"}},
		{name: "オーナー絞り込み", criteria: FilterCriteria{OwnerID: "o1"}, want: []string{"p1", "p3"}},
		{name: "全条件", criteria: FilterCriteria{Neighborhood: "District 1", TransactionType: "sale", OwnerID: "o1"}, want: []string{"p1"}},
		{name: "一致なし", criteria: FilterCriteria{Neighborhood: "District 9"}, want: []string{}},
		{name: "部分一致はしない", criteria: FilterCriteria{Neighborhood: "District"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleProperties(), tt.criteria)
			if !equalIDs(idsOf(got), tt.want) {
				t.Errorf("Filter() = %v, want %v", idsOf(got), tt.want)
			}
		})
	}
}

// TestFilter_PreservesInput は入力スライスが変更されず、
// 順序が維持されることを検証する。
func TestFilter_PreservesInput(t *testing.T) {
	input := sampleProperties()
	Filter(input, FilterCriteria{TransactionType: "rent"})

	if !equalIDs(idsOf(input), []string{"p1", "p2", "p3", "p4"}) {
		t.Errorf("入力スライスが変更された: %v", idsOf(input))
	}
}

// TestFilter_OrderIndependent は条件の適用順序が結果に影響しないことを
// 検証する。ANDの可換性により、どの順序でも同じ部分列が得られる。
func TestFilter_OrderIndependent(t *testing.T) {
	input := sampleProperties()

	// 1段階で適用
	direct := Filter(input, FilterCriteria{Neighborhood: "District 1", TransactionType: "rent"})

	// 2段階で順序を変えて適用
	ab := Filter(Filter(input, FilterCriteria{Neighborhood: "District 1"}), FilterCriteria{TransactionType: "rent"})
	ba := Filter(Filter(input, FilterCriteria{TransactionType: "rent"}), FilterCriteria{Neighborhood: "District 1"})

	if !equalIDs(idsOf(direct), idsOf(ab)) || !equalIDs(idsOf(ab), idsOf(ba)) {
		t.Errorf("適用順序で結果が変わった: direct=%v ab=%v ba=%v", idsOf(direct), idsOf(ab), idsOf(ba))
	}
}

// TestFilter_EmptyInput は空入力で空の結果を返すことを検証する。
func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, FilterCriteria{Neighborhood: "District 1"})
	if len(got) != 0 {
		t.Errorf("空入力の結果 = %v, want 空", got)
	}
}
