package property

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/aqar/internal/model"
	"github.com/hitoshi/aqar/internal/repository"
	"github.com/hitoshi/aqar/internal/security"
)

// ImageResolver は画像入力を公開URLの列に解決するインターフェース。
// storage.Pipelineが実装する。
type ImageResolver interface {
	Resolve(ctx context.Context, files []model.ImageFile, remoteURLs []string) ([]string, error)
}

// MetricsCollector は物件操作のメトリクス記録インターフェース。
type MetricsCollector interface {
	RecordListFetchSuccess()
	RecordListFetchFailure()
	RecordListFetchLatency(duration time.Duration)
	RecordPropertyCreated()
	RecordPropertyCreateFailure()
}

// ServiceConfig は物件サービスの設定。
type ServiceConfig struct {
	// CityName は単一都市マーケットプレイスの都市名。全物件に設定される。
	CityName string
	// RemoteTimeout は1回のリモート呼び出しのタイムアウト。
	RemoteTimeout time.Duration
	// FetchMaxRetries は冪等な読み取りの最大試行回数。
	FetchMaxRetries int
}

// Service は物件の取得・作成のサービス層。
//
// 一貫性モデル: 作成後にローカルへ楽観的に挿入することはせず、
// 呼び出し元が再度ListAllを実行してサーバー確定済みの状態を観測する。
// 作成と再取得はトランザクショナルではないため、他の契機による再取得と
// 競合した場合は最大1回の古い描画が発生しうる（許容される）。
type Service struct {
	repo      repository.PropertyRepository
	images    ImageResolver
	sanitizer security.ListingSanitizerService
	metrics   MetricsCollector
	logger    *slog.Logger
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(
	repo repository.PropertyRepository,
	images ImageResolver,
	sanitizer security.ListingSanitizerService,
	metrics MetricsCollector,
	logger *slog.Logger,
	config ServiceConfig,
) *Service {
	if config.FetchMaxRetries <= 0 {
		config.FetchMaxRetries = 3
	}
	return &Service{
		repo:      repo,
		images:    images,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// ListAll は全物件を新着順で取得する。
// 読み取りは冪等なため、失敗時は指数バックオフ付きでリトライする。
// 最終的に失敗した場合はStoreErrorを返す。握りつぶしはしない。
func (s *Service) ListAll(ctx context.Context) ([]*model.Property, error) {
	start := time.Now()

	var properties []*model.Property
	err := withRetry(ctx, s.config.FetchMaxRetries, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, s.config.RemoteTimeout)
		defer cancel()

		var fetchErr error
		properties, fetchErr = s.repo.ListAll(fetchCtx)
		return fetchErr
	})

	if err != nil {
		s.logger.Error("物件一覧の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordListFetchFailure()
		}
		return nil, model.NewStoreFetchFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordListFetchSuccess()
		s.metrics.RecordListFetchLatency(time.Since(start))
	}

	return properties, nil
}

// Create は下書きから物件を作成する。
// タイトルと説明文をサニタイズし、画像をアップロードした上で
// owner_id = ownerID として永続化する。
// 呼び出し元は作成後にListAllを再実行して新しい行を観測すること。
func (s *Service) Create(ctx context.Context, draft *model.PropertyDraft, ownerID string) (*model.Property, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if _, err := model.ParseTransactionType(string(draft.TransactionType)); err != nil {
		return nil, err
	}

	// 画像のアップロード（全滅時はここで中止される）
	imageURLs, err := s.images.Resolve(ctx, draft.ImageFiles, draft.RemoteImageURLs)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordPropertyCreateFailure()
		}
		return nil, err
	}

	property := &model.Property{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Title:           s.sanitizer.SanitizeTitle(draft.Title),
		Description:     s.sanitizer.SanitizeDescription(draft.Description),
		Images:          imageURLs,
		Price:           draft.Price,
		Area:            draft.Area,
		Bedrooms:        draft.Bedrooms,
		Bathrooms:       draft.Bathrooms,
		Floor:           draft.Floor,
		Neighborhood:    draft.Neighborhood,
		City:            s.config.CityName,
		TransactionType: draft.TransactionType,
		ContactPhone:    draft.ContactPhone,
		CreatedAt:       time.Now(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.config.RemoteTimeout)
	defer cancel()

	// 書き込みは冪等でないためリトライしない
	if err := s.repo.Create(insertCtx, property); err != nil {
		s.logger.Error("物件の登録に失敗しました",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordPropertyCreateFailure()
		}
		return nil, model.NewStoreInsertFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordPropertyCreated()
	}

	s.logger.Info("物件を登録しました",
		slog.String("property_id", property.ID),
		slog.String("owner_id", ownerID),
		slog.Int("image_count", len(imageURLs)),
	)

	return property, nil
}
