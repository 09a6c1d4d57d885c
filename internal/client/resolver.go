// Package client はリモート認証状態とローカル表示状態を同期する
// クライアントコアを提供する。セッション解決、プロフィール読み込み、
// 画面ルーティングを含む。
package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/aqar/internal/auth"
	"github.com/hitoshi/aqar/internal/model"
)

// SessionSource はリゾルバが必要とする認証コラボレータのインターフェース。
type SessionSource interface {
	// CurrentSession は現在のセッションを返す。存在しない場合はnil。
	CurrentSession(ctx context.Context) (*model.Session, error)
	// Subscribe はセッション変更イベントの購読を開始する。
	Subscribe() *auth.Subscription
}

// ProfileFinder はプロフィール取得のインターフェース。
// repository.ProfileRepositoryの部分集合として定義する。
type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// State はリゾルバが保持するクライアント状態のスナップショット。
type State struct {
	// Loading は初回セッション解決が完了するまでtrue。
	Loading bool
	// Session は現在のセッション。未認証ならnil。
	Session *model.Session
	// CurrentUser はSessionとProfileの結合。両方が揃うまではnil。
	CurrentUser *model.CurrentUser
	// RoleErr はプロフィールの役割が解釈できなかった場合のエラー。
	RoleErr error
}

// Resolver はセッションの解決とプロフィールの読み込みを行い、
// クライアント状態を保持する。
//
// セッション変更イベントはプロフィール取得の完了と任意の順序で到着しうる。
// 各プロフィール取得は起動時点の世代番号を持ち、完了時に世代が進んでいれば
// 結果を破棄する。これによりセッションS1向けの取得結果がS2や未認証状態に
// 適用されることはない。
type Resolver struct {
	source   SessionSource
	profiles ProfileFinder
	timeout  time.Duration

	mu         sync.Mutex
	loading    bool
	session    *model.Session
	current    *model.CurrentUser
	roleErr    error
	generation uint64

	sub    *auth.Subscription
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// defaultRemoteTimeout はリモート呼び出しのタイムアウト既定値。
const defaultRemoteTimeout = 10 * time.Second

// NewResolver はResolverを生成する。
// timeoutが0以下の場合は既定値を使用する。
func NewResolver(source SessionSource, profiles ProfileFinder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &Resolver{
		source:   source,
		profiles: profiles,
		timeout:  timeout,
		loading:  true,
	}
}

// Start はリゾルバを起動する。
// 現在のセッションをちょうど1回取得し、変更イベントの購読を開始する。
// 購読はCloseが呼ばれるまで継続する。
func (r *Resolver) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.sub = r.source.Subscribe()

	go r.run(ctx)
}

// Close は購読を解除し、実行中の処理を停止する。
// 完了していないリモート呼び出しの結果は破棄される。複数回呼んでも安全。
func (r *Resolver) Close() {
	r.closeOnce.Do(func() {
		if r.sub != nil {
			r.sub.Unsubscribe()
		}
		if r.cancel != nil {
			r.cancel()
		}
		if r.done != nil {
			<-r.done
		}
	})
}

// Snapshot は現在のクライアント状態のコピーを返す。
func (r *Resolver) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Loading:     r.loading,
		Session:     r.session,
		CurrentUser: r.current,
		RoleErr:     r.roleErr,
	}
}

// Screen は現在の状態から表示すべき画面を返す。
func (r *Resolver) Screen() Screen {
	s := r.Snapshot()
	return Resolve(s.Loading, s.Session, s.CurrentUser, s.RoleErr)
}

// run は初回セッション解決とイベントループを実行する。
func (r *Resolver) run(ctx context.Context) {
	defer close(r.done)

	r.resolveInitial(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.sub.C:
			if !ok {
				return
			}
			r.applyEvent(ctx, event)
		}
	}
}

// resolveInitial は初回のセッション解決を行う。
// 成否に関わらずloadingを解除する。
func (r *Resolver) resolveInitial(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := r.source.CurrentSession(fetchCtx)
	if err != nil {
		slog.Error("failed to resolve initial session", slog.String("error", err.Error()))
		session = nil
	}

	r.mu.Lock()
	r.loading = false
	r.session = session
	gen := r.generation
	r.mu.Unlock()

	if session != nil {
		go r.loadProfile(ctx, gen, session)
	}
}

// applyEvent はセッション変更イベントを状態に反映する。
func (r *Resolver) applyEvent(ctx context.Context, event auth.Event) {
	r.mu.Lock()

	switch event.Type {
	case auth.EventSignedOut:
		// セッション消失時はCurrentUserを即座に破棄する。
		// 世代を進めることで実行中のプロフィール取得結果も無効化される。
		r.generation++
		r.session = nil
		r.current = nil
		r.roleErr = nil
		r.mu.Unlock()
		return

	case auth.EventTokenRefreshed:
		// 同一セッションの延長。CurrentUserは維持し、世代も進めない。
		if event.Session != nil && r.session != nil && event.Session.ID == r.session.ID {
			r.session = event.Session
		}
		r.mu.Unlock()
		return

	case auth.EventSignedIn:
		if event.Session == nil {
			r.mu.Unlock()
			return
		}
		sameUser := r.current != nil && r.current.ID == event.Session.UserID
		r.generation++
		r.session = event.Session
		r.roleErr = nil
		gen := r.generation

		if sameUser {
			// 同一ユーザーのセッション再発行。導出済みのCurrentUserは
			// 冪等な投影のため再取得しない。
			r.current = model.DeriveCurrentUser(event.Session, &model.Profile{
				ID:       r.current.ID,
				FullName: r.current.FullName,
				Role:     r.current.Role,
			})
			r.mu.Unlock()
			return
		}

		r.current = nil
		session := event.Session
		r.mu.Unlock()

		go r.loadProfile(ctx, gen, session)
		return
	}

	r.mu.Unlock()
}

// loadProfile はセッションに対応するプロフィールを取得し、CurrentUserを導出する。
// 取得開始時の世代番号genを保持し、完了時に世代が進んでいれば結果を破棄する。
func (r *Resolver) loadProfile(ctx context.Context, gen uint64, session *model.Session) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.profiles.FindByID(fetchCtx, session.UserID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		slog.Debug("stale profile fetch discarded",
			slog.String("user_id", session.UserID),
		)
		return
	}

	if err != nil {
		// 役割が解釈できない場合は明示的なエラー画面に遷移させる。
		// それ以外の失敗はCurrentUser不在のままとし、未認証画面が表示される。
		if apiErr, ok := err.(*model.APIError); ok && apiErr.Code == model.ErrCodeUnknownRole {
			r.roleErr = err
		}
		slog.Error("failed to load profile",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	if profile == nil {
		slog.Warn("profile not found for session",
			slog.String("user_id", session.UserID),
		)
		return
	}

	r.current = model.DeriveCurrentUser(session, profile)
}
