// Package storage はオブジェクトストレージ連携機能を提供する。
// ストレージAPIのクライアントと画像アップロードパイプラインを含む。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Client はオブジェクトストレージのインターフェース。
type Client interface {
	// Upload は画像データをアップロードし、ストレージ内のパスを返す。
	Upload(ctx context.Context, name string, data []byte) (string, error)

	// PublicURL はストレージ内のパスから公開URLを解決する。
	PublicURL(path string) string
}

// HTTPClientConfig はHTTPストレージクライアントの設定。
type HTTPClientConfig struct {
	Endpoint   string // ストレージAPIのベースURL
	Bucket     string // アップロード先バケット
	PublicBase string // 公開URLのベース
}

// HTTPClient はS3互換のHTTP APIを使用するストレージクライアント。
// オブジェクトは PUT {endpoint}/{bucket}/{name} でアップロードされる。
type HTTPClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     HTTPClientConfig
}

// NewHTTPClient はHTTPClientの新しいインスタンスを生成する。
func NewHTTPClient(httpClient *http.Client, logger *slog.Logger, config HTTPClientConfig) *HTTPClient {
	return &HTTPClient{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// Upload は画像データをアップロードし、ストレージ内のパスを返す。
func (c *HTTPClient) Upload(ctx context.Context, name string, data []byte) (string, error) {
	objectPath := url.PathEscape(name)
	reqURL := fmt.Sprintf("%s/%s/%s", c.config.Endpoint, c.config.Bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("アップロードリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ストレージAPIの呼び出しに失敗しました",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("ストレージAPIがエラーステータスを返しました",
			slog.String("name", name),
			slog.Int("http_status", resp.StatusCode),
		)
		return "", fmt.Errorf("ストレージAPIがステータス %d を返しました", resp.StatusCode)
	}

	return objectPath, nil
}

// PublicURL はストレージ内のパスから公開URLを解決する。
func (c *HTTPClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.config.PublicBase, c.config.Bucket, path)
}

// compile-time interface check
var _ Client = (*HTTPClient)(nil)
