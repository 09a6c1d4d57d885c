package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aqar/internal/middleware"
	"github.com/hitoshi/aqar/internal/model"
	"github.com/hitoshi/aqar/internal/property"
)

// PropertyServiceInterface は物件ハンドラーが必要とするサービスインターフェース。
type PropertyServiceInterface interface {
	ListAll(ctx context.Context) ([]*model.Property, error)
	Create(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error)
}

// PropertyHandler は物件関連のHTTPハンドラー。
type PropertyHandler struct {
	service  PropertyServiceInterface
	profiles ProfileFinder
}

// NewPropertyHandler はPropertyHandlerを生成する。
func NewPropertyHandler(service PropertyServiceInterface, profiles ProfileFinder) *PropertyHandler {
	return &PropertyHandler{
		service:  service,
		profiles: profiles,
	}
}

// propertyDTO はPropertyのAPI表現。
type propertyDTO struct {
	ID              string   `json:"id"`
	OwnerID         string   `json:"owner_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Images          []string `json:"images"`
	Price           int64    `json:"price"`
	Area            int      `json:"area"`
	Bedrooms        int      `json:"bedrooms"`
	Bathrooms       int      `json:"bathrooms"`
	Floor           int      `json:"floor"`
	Neighborhood    string   `json:"neighborhood"`
	City            string   `json:"city"`
	TransactionType string   `json:"transaction_type"`
	ContactPhone    string   `json:"contact_phone"`
}

// toPropertyDTO はPropertyをAPI表現に変換する。
func toPropertyDTO(p *model.Property) propertyDTO {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return propertyDTO{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
		Description:     p.Description,
		Images:          images,
		Price:           p.Price,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Floor:           p.Floor,
		Neighborhood:    p.Neighborhood,
		City:            p.City,
		TransactionType: string(p.TransactionType),
		ContactPhone:    p.ContactPhone,
	}
}

// List は物件一覧を絞り込み条件付きで返す。
// 各条件はワイルドカード（"All"または未指定）か完全一致。
// mine=true の場合は自分の物件のみに制限する（オーナーダッシュボード用）。
// GET /api/properties?neighborhood=&transaction_type=&mine=
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	properties, err := h.service.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	criteria := property.FilterCriteria{
		Neighborhood:    r.URL.Query().Get("neighborhood"),
		TransactionType: r.URL.Query().Get("transaction_type"),
	}
	if r.URL.Query().Get("mine") == "true" {
		criteria.OwnerID = session.UserID
	}

	filtered := property.Filter(properties, criteria)

	dtos := make([]propertyDTO, 0, len(filtered))
	for _, p := range filtered {
		dtos = append(dtos, toPropertyDTO(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"properties": dtos,
	})
}

// imagePayload はリクエストボディに含まれる画像データ。
type imagePayload struct {
	Name string `json:"name"`
	// Data はbase64エンコードされた画像バイト列。
	Data string `json:"data"`
}

// createPropertyRequest は物件作成リクエストのボディ。
type createPropertyRequest struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Price           int64          `json:"price"`
	Area            int            `json:"area"`
	Bedrooms        int            `json:"bedrooms"`
	Bathrooms       int            `json:"bathrooms"`
	Floor           int            `json:"floor"`
	Neighborhood    string         `json:"neighborhood"`
	TransactionType string         `json:"transaction_type"`
	ContactPhone    string         `json:"contact_phone"`
	Images          []imagePayload `json:"images"`
	RemoteImageURLs []string       `json:"remote_image_urls"`
}

// Create は新しい物件を作成する。オーナーのみ実行できる。
// 成功後に一覧を再取得し、サーバー確定済みの状態をレスポンスに含める。
// POST /api/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// 役割の検証: オーナーのみ掲載可能
	profile, err := h.profiles.FindByID(r.Context(), session.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if profile == nil {
		middleware.WriteError(w, model.NewProfileNotFoundError(session.UserID))
		return
	}
	if profile.Role != model.RoleOwner {
		middleware.WriteError(w, model.NewOwnerRoleRequiredError())
		return
	}

	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.ContactPhone == "" {
		http.Error(w, "title and contact_phone are required", http.StatusBadRequest)
		return
	}

	draft := &model.PropertyDraft{
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Area:            req.Area,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		Floor:           req.Floor,
		Neighborhood:    req.Neighborhood,
		TransactionType: model.TransactionType(req.TransactionType),
		ContactPhone:    req.ContactPhone,
		RemoteImageURLs: req.RemoteImageURLs,
	}

	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			http.Error(w, "invalid image data", http.StatusBadRequest)
			return
		}
		draft.ImageFiles = append(draft.ImageFiles, model.ImageFile{
			Name: img.Name,
			Data: data,
		})
	}

	created, err := h.service.Create(r.Context(), draft, session.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	// 再取得後の一覧が新しい行を含むことを保証する（楽観的挿入はしない）
	properties, err := h.service.ListAll(r.Context())
	if err != nil {
		// 作成自体は成功している。一覧の再取得失敗は作成結果のみ返す。
		slog.Warn("refetch after create failed", slog.String("error", err.Error()))
		properties = []*model.Property{created}
	}

	dtos := make([]propertyDTO, 0, len(properties))
	for _, p := range properties {
		dtos = append(dtos, toPropertyDTO(p))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"property":   toPropertyDTO(created),
		"properties": dtos,
	})
}
