package property

import (
	"context"
	"time"
)

const (
	// initialRetryDelay はリトライの初回遅延。
	initialRetryDelay = 200 * time.Millisecond
	// maxRetryDelay はリトライの最大遅延。
	maxRetryDelay = 2 * time.Second
)

// CalculateRetryDelay は試行回数（0始まり）に基づいて指数バックオフ遅延を計算する。
// 初回200ms、2倍ずつ増加、最大2秒。
func CalculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// withRetry は冪等な読み取り操作を最大maxAttempts回まで実行する。
// 書き込みは冪等でないためリトライしない。
// コンテキストのキャンセルでリトライを打ち切る。
func withRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(CalculateRetryDelay(attempt)):
		}
	}
	return err
}
