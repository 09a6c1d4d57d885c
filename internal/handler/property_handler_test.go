package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/aqar/internal/middleware"
	"github.com/hitoshi/aqar/internal/model"
)

// --- モック ---

type mockPropertyService struct {
	listAllFn func(ctx context.Context) ([]*model.Property, error)
	createFn  func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error)
}

func (m *mockPropertyService) ListAll(ctx context.Context) ([]*model.Property, error) {
	return m.listAllFn(ctx)
}
func (m *mockPropertyService) Create(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
	return m.createFn(ctx, draft, ownerID)
}

func authedPropertyRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	session := &model.Session{ID: "sess-1", UserID: "user-1", Email: "taro@example.com"}
	return req.WithContext(middleware.ContextWithSession(req.Context(), session))
}

func ownerProfileFinder() *mockProfileFinder {
	return &mockProfileFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, FullName: "山田太郎", Role: model.RoleOwner}, nil
		},
	}
}

func listedProperties() []*model.Property {
	return []*model.Property{
		{ID: "p1", OwnerID: "user-1", Neighborhood: "District 1", TransactionType: model.TransactionSale},
		{ID: "p2", OwnerID: "user-2", Neighborhood: "District 2", TransactionType: model.TransactionRent},
		{ID: "p3", OwnerID: "user-1", Neighborhood: "District 1", TransactionType: model.TransactionRent},
	}
}

type listResponse struct {
	Properties []propertyDTO `json:"properties"`
}

// --- テスト ---

// TestPropertyHandler_List は物件一覧と絞り込みを検証する。
func TestPropertyHandler_List(t *testing.T) {
	service := &mockPropertyService{
		listAllFn: func(ctx context.Context) ([]*model.Property, error) {
			return listedProperties(), nil
		},
	}

	tests := []struct {
		name   string
		query  string
		wantID []string
	}{
		{name: "条件なし", query: "", wantID: []string{"p1", "p2", "p3"}},
		{name: "Allワイルドカード", query: "?neighborhood=All&transaction_type=All", wantID: []string{"p1", "p2", "p3"}},
		{name: "地区絞り込み", query: "?neighborhood=District+1", wantID: []string{"p1", "p3"}},
		{name: "賃貸のみ", query: "?transaction_type=rent", wantID: []string{"p2", "p3"}},
		{name: "地区と賃貸のAND", query: "?neighborhood=District+1&transaction_type=rent", wantID: []string{"p3"}},
		{name: "自分の物件のみ", query: "?mine=true", wantID: []string{"p1", "p3"}},
	}

	h := NewPropertyHandler(service, ownerProfileFinder())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.List(rec, authedPropertyRequest(http.MethodGet, "/api/properties"+tt.query, ""))

			if rec.Code != http.StatusOK {
				t.Fatalf("ステータス = %d, want 200", rec.Code)
			}

			var resp listResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("デコードに失敗: %v", err)
			}
			ids := make([]string, 0, len(resp.Properties))
			for _, p := range resp.Properties {
				ids = append(ids, p.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tt.wantID) {
				t.Errorf("ID = %v, want %v", ids, tt.wantID)
			}
		})
	}
}

// TestPropertyHandler_List_StoreFailure は取得失敗がリトライ可能な
// エラーとして返されることを検証する。
func TestPropertyHandler_List_StoreFailure(t *testing.T) {
	service := &mockPropertyService{
		listAllFn: func(ctx context.Context) ([]*model.Property, error) {
			return nil, model.NewStoreFetchFailedError()
		},
	}

	h := NewPropertyHandler(service, ownerProfileFinder())
	rec := httptest.NewRecorder()
	h.List(rec, authedPropertyRequest(http.MethodGet, "/api/properties", ""))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ステータス = %d, want 503", rec.Code)
	}
}

// TestPropertyHandler_Create はオーナーによる物件作成を検証する。
// レスポンスには再取得後の一覧が含まれ、新しい行を含むことが保証される。
func TestPropertyHandler_Create(t *testing.T) {
	created := &model.Property{ID: "p-new", OwnerID: "user-1", Title: "New Listing", TransactionType: model.TransactionSale}

	var gotDraft *model.PropertyDraft
	var gotOwnerID string
	service := &mockPropertyService{
		createFn: func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
			gotDraft = draft
			gotOwnerID = ownerID
			return created, nil
		},
		listAllFn: func(ctx context.Context) ([]*model.Property, error) {
			return append([]*model.Property{created}, listedProperties()...), nil
		},
	}

	imageData := base64.StdEncoding.EncodeToString([]byte("image-bytes"))
	body := fmt.Sprintf(`{
		"title": "New Listing",
		"description": "Nice",
		"price": 1500000,
		"neighborhood": "District 1",
		"transaction_type": "sale",
		"contact_phone": "0100000000",
		"images": [{"name": "front.jpg", "data": %q}]
	}`, imageData)

	h := NewPropertyHandler(service, ownerProfileFinder())
	rec := httptest.NewRecorder()
	h.Create(rec, authedPropertyRequest(http.MethodPost, "/api/properties", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("ステータス = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	// owner_idはセッションから取られる。リクエストボディでは指定できない。
	if gotOwnerID != "user-1" {
		t.Errorf("ownerID = %s, want user-1", gotOwnerID)
	}
	if gotDraft == nil || len(gotDraft.ImageFiles) != 1 || string(gotDraft.ImageFiles[0].Data) != "image-bytes" {
		t.Errorf("draft = %+v", gotDraft)
	}

	var resp struct {
		Property   propertyDTO   `json:"property"`
		Properties []propertyDTO `json:"properties"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("デコードに失敗: %v", err)
	}
	if resp.Property.ID != "p-new" {
		t.Errorf("property = %+v", resp.Property)
	}
	found := false
	for _, p := range resp.Properties {
		if p.ID == "p-new" {
			found = true
		}
	}
	if !found {
		t.Error("再取得後の一覧に新しい行が含まれていない")
	}
}

// TestPropertyHandler_Create_BuyerForbidden は購入希望者による掲載が
// 拒否されることを検証する。
func TestPropertyHandler_Create_BuyerForbidden(t *testing.T) {
	createCalled := false
	service := &mockPropertyService{
		createFn: func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
			createCalled = true
			return nil, nil
		},
		listAllFn: func(ctx context.Context) ([]*model.Property, error) {
			return nil, nil
		},
	}
	profiles := &mockProfileFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Role: model.RoleBuyer}, nil
		},
	}

	body := `{"title": "X", "transaction_type": "sale", "contact_phone": "0100000000"}`
	h := NewPropertyHandler(service, profiles)
	rec := httptest.NewRecorder()
	h.Create(rec, authedPropertyRequest(http.MethodPost, "/api/properties", body))

	if rec.Code != http.StatusForbidden {
		t.Errorf("ステータス = %d, want 403", rec.Code)
	}
	if createCalled {
		t.Error("購入希望者の掲載がサービスに到達した")
	}
}

// TestPropertyHandler_Create_Validation は必須フィールド不足での400を検証する。
func TestPropertyHandler_Create_Validation(t *testing.T) {
	h := NewPropertyHandler(&mockPropertyService{
		createFn: func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
			return nil, nil
		},
		listAllFn: func(ctx context.Context) ([]*model.Property, error) { return nil, nil },
	}, ownerProfileFinder())

	body := `{"description": "no title"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedPropertyRequest(http.MethodPost, "/api/properties", body))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("ステータス = %d, want 400", rec.Code)
	}
}

// TestPropertyHandler_Create_RefetchFailure は作成成功後の再取得失敗時に
// 作成結果のみでレスポンスすることを検証する。
func TestPropertyHandler_Create_RefetchFailure(t *testing.T) {
	created := &model.Property{ID: "p-new", OwnerID: "user-1", TransactionType: model.TransactionRent}
	service := &mockPropertyService{
		createFn: func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
			return created, nil
		},
		listAllFn: func(ctx context.Context) ([]*model.Property, error) {
			return nil, model.NewStoreFetchFailedError()
		},
	}

	body := `{"title": "X", "transaction_type": "rent", "contact_phone": "0100000000"}`
	h := NewPropertyHandler(service, ownerProfileFinder())
	rec := httptest.NewRecorder()
	h.Create(rec, authedPropertyRequest(http.MethodPost, "/api/properties", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("ステータス = %d, want 201", rec.Code)
	}

	var resp struct {
		Properties []propertyDTO `json:"properties"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Properties) != 1 || resp.Properties[0].ID != "p-new" {
		t.Errorf("properties = %+v", resp.Properties)
	}
}

// TestPropertyHandler_Unauthenticated はセッション不在での401を検証する。
func TestPropertyHandler_Unauthenticated(t *testing.T) {
	h := NewPropertyHandler(&mockPropertyService{
		listAllFn: func(ctx context.Context) ([]*model.Property, error) { return nil, nil },
		createFn: func(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
			return nil, nil
		},
	}, ownerProfileFinder())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("List: ステータス = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/properties", strings.NewReader("{}")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Create: ステータス = %d, want 401", rec.Code)
	}
}
