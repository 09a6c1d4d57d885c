package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/hitoshi/aqar/internal/model"
	"github.com/hitoshi/aqar/internal/security"
)

// UploadMetrics はアップロード結果のメトリクス記録インターフェース。
type UploadMetrics interface {
	RecordUploadSuccess()
	RecordUploadFailure()
}

// PipelineConfig は画像アップロードパイプラインの設定。
type PipelineConfig struct {
	// UploadTimeout は1ファイルあたりのアップロードタイムアウト。
	UploadTimeout time.Duration
	// FetchTimeout はURL指定画像の取得タイムアウト。
	FetchTimeout time.Duration
	// MaxImageSize はURL指定画像の最大サイズ（バイト）。
	MaxImageSize int64
	// PlaceholderURLTemplate は画像なし時のプレースホルダーURLテンプレート。
	// %d にタイムスタンプが埋め込まれる。
	PlaceholderURLTemplate string
}

// Pipeline は物件画像のアップロードパイプライン。
//
// すべてのファイルを並行にアップロードし、全件の完了を待つ。
// ポリシー:
//   - 1件以上成功: 成功したURLのみで掲載を続行する（失敗分はログとメトリクスに記録）
//   - 入力0件: タイムスタンプをシードにした決定的なプレースホルダーURLを1件代入する
//   - 全件失敗: 掲載を中止し、呼び出し元へ同期的にエラーを返す
type Pipeline struct {
	client  Client
	guard   security.ImageGuardService
	metrics UploadMetrics
	logger  *slog.Logger
	config  PipelineConfig

	// now はテストで時刻を固定するための関数。
	now func() time.Time
}

// NewPipeline はPipelineの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewPipeline(
	client Client,
	guard security.ImageGuardService,
	metrics UploadMetrics,
	logger *slog.Logger,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		client:  client,
		guard:   guard,
		metrics: metrics,
		logger:  logger,
		config:  config,
		now:     time.Now,
	}
}

// uploadInput は解決対象の1件。fetchFailedはURL指定画像の取得失敗を示す。
// 取得に失敗した項目はアップロードを試行しないが、全滅判定の分母には数える。
type uploadInput struct {
	file        model.ImageFile
	fetchFailed bool
}

// Resolve は画像入力を公開URLの列に解決する。
// ローカルファイルとURL指定画像の両方を処理し、入力順を維持した
// 成功分のURLを返す。入力が1件以上あり全件失敗した場合は
// UploadErrorを返し、掲載は中止される。
func (p *Pipeline) Resolve(ctx context.Context, files []model.ImageFile, remoteURLs []string) ([]string, error) {
	inputs := make([]uploadInput, 0, len(files)+len(remoteURLs))
	for _, f := range files {
		inputs = append(inputs, uploadInput{file: f})
	}

	// URL指定画像はSSRFガード付きクライアントで取得してから
	// ローカルファイルと同じ経路でアップロードする。
	for _, rawURL := range remoteURLs {
		file, err := p.fetchRemoteImage(ctx, rawURL)
		if err != nil {
			p.logger.Warn("URL指定画像の取得に失敗しました",
				slog.String("url", rawURL),
				slog.String("error", err.Error()),
			)
			p.recordFailure()
			// 取得失敗はアップロード失敗と同じ扱い
			inputs = append(inputs, uploadInput{fetchFailed: true})
			continue
		}
		inputs = append(inputs, uploadInput{file: file})
	}

	// 入力0件: 決定的なプレースホルダーを1件代入する
	if len(inputs) == 0 {
		placeholder := fmt.Sprintf(p.config.PlaceholderURLTemplate, p.now().UnixMilli())
		return []string{placeholder}, nil
	}

	urls := p.uploadAll(ctx, inputs)

	if len(urls) == 0 {
		return nil, model.NewAllUploadsFailedError()
	}

	return urls, nil
}

// uploadAll は全ファイルを並行にアップロードし、全件の完了を待つ。
// 結果は入力順を維持し、失敗分は除外される。
func (p *Pipeline) uploadAll(ctx context.Context, inputs []uploadInput) []string {
	timestamp := p.now().UnixMilli()
	results := make([]string, len(inputs))
	var wg sync.WaitGroup

	for i, in := range inputs {
		if in.fetchFailed {
			continue
		}

		wg.Add(1)
		go func(idx int, f model.ImageFile) {
			defer wg.Done()

			uploadCtx, cancel := context.WithTimeout(ctx, p.config.UploadTimeout)
			defer cancel()

			// オブジェクト名はタイムスタンプ + 元ファイル名。
			// 名前のないファイルは"image"、同一ミリ秒内の同名衝突は許容する。
			baseName := f.Name
			if baseName == "" {
				baseName = "image"
			}
			name := fmt.Sprintf("%d-%s", timestamp, baseName)

			storedPath, err := p.client.Upload(uploadCtx, name, f.Data)
			if err != nil {
				p.logger.Warn("画像のアップロードに失敗しました",
					slog.String("name", baseName),
					slog.String("error", err.Error()),
				)
				p.recordFailure()
				return
			}

			results[idx] = p.client.PublicURL(storedPath)
			p.recordSuccess()
		}(i, in.file)
	}

	wg.Wait()

	urls := make([]string, 0, len(results))
	for _, u := range results {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchRemoteImage はURL指定画像をSSRFガード付きクライアントで取得する。
func (p *Pipeline) fetchRemoteImage(ctx context.Context, rawURL string) (model.ImageFile, error) {
	if err := p.guard.ValidateImageURL(rawURL); err != nil {
		return model.ImageFile{}, model.NewInvalidImageURLError(err.Error())
	}

	client := p.guard.NewSafeClient(p.config.FetchTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("画像取得リクエストの作成に失敗しました: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.ImageFile{}, fmt.Errorf("画像の取得がステータス %d で失敗しました", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.config.MaxImageSize))
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("画像データの読み取りに失敗しました: %w", err)
	}

	return model.ImageFile{Name: remoteImageName(rawURL), Data: data}, nil
}

// remoteImageName はURLからオブジェクト名に使うファイル名を導出する。
func remoteImageName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "remote-image"
	}
	return path.Base(parsed.Path)
}

func (p *Pipeline) recordSuccess() {
	if p.metrics != nil {
		p.metrics.RecordUploadSuccess()
	}
}

func (p *Pipeline) recordFailure() {
	if p.metrics != nil {
		p.metrics.RecordUploadFailure()
	}
}
