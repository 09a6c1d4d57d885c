package auth

import (
	"log/slog"
	"sync"

	"github.com/hitoshi/aqar/internal/model"
)

// EventType はセッション変更イベントの種別を表す。
type EventType string

const (
	// EventSignedIn はサインイン成功イベント。
	EventSignedIn EventType = "signed_in"
	// EventSignedOut はサインアウトイベント。
	EventSignedOut EventType = "signed_out"
	// EventTokenRefreshed はセッション延長イベント。
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event はセッション変更イベントを表す。
// SignedOutの場合Sessionはnil。
type Event struct {
	Type    EventType
	Session *model.Session
}

// Subscription はセッション変更イベントの購読ハンドル。
// 利用側はビュー破棄時に必ずUnsubscribeを呼ぶこと。
type Subscription struct {
	// C はイベントの受信チャネル。Unsubscribeでクローズされる。
	C <-chan Event

	once sync.Once
	stop func()
}

// Unsubscribe は購読を解除し、受信チャネルをクローズする。
// 複数回呼んでも安全。
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.stop)
}

// Notifier はセッション変更イベントを購読者へ配信する。
// 購読者ごとにバッファ付きチャネルを持ち、配信はブロックしない。
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// subscriptionBuffer は購読者チャネルのバッファサイズ。
const subscriptionBuffer = 16

// NewNotifier はNotifierを生成する。
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe はセッション変更イベントの購読を開始し、購読ハンドルを返す。
func (n *Notifier) Subscribe() *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Event, subscriptionBuffer)
	n.subs[id] = ch

	return &Subscription{
		C: ch,
		stop: func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if _, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(ch)
			}
		},
	}
}

// Publish は全購読者へイベントを配信する。
// 購読者のバッファが満杯の場合、そのイベントは破棄される。
func (n *Notifier) Publish(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subs {
		select {
		case ch <- event:
		default:
			slog.Warn("session event dropped: subscriber buffer full",
				slog.Int("subscriber_id", id),
				slog.String("event_type", string(event.Type)),
			)
		}
	}
}
