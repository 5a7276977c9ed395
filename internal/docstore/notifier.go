package docstore

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Notifier fans collection-change notes out to watchers. A note carries
// only the collection name; subscribers re-read the collection to build a
// fresh snapshot, so a lost note is repaired by the next one.
type Notifier interface {
	// Publish announces that the named collection changed.
	Publish(ctx context.Context, collection string) error
	// Subscribe returns a channel of collection names and a release func.
	Subscribe(ctx context.Context) (<-chan string, func(), error)
}

const changeChannel = "docstore.changes"

// RedisNotifier distributes change notes over Redis pub/sub so that every
// process mirroring the store observes writes made by any of them.
type RedisNotifier struct {
	rdb *redis.Client
}

// NewRedisNotifier wraps an existing Redis client. The client must be
// non-nil; callers that got nil from config.NewRedisClient should fall back
// to NewMemoryNotifier instead.
func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Publish(ctx context.Context, collection string) error {
	return n.rdb.Publish(ctx, changeChannel, collection).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan string, func(), error) {
	sub := n.rdb.Subscribe(ctx, changeChannel)
	// Force the subscription to be established before returning so callers
	// never miss notes published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}

// MemoryNotifier is an in-process fan-out used in tests and when the
// service runs without Redis. Notes are delivered best-effort: a subscriber
// that is not draining its channel gets a buffered backlog and then drops,
// which is safe because notes are only resync hints.
type MemoryNotifier struct {
	mu   sync.Mutex
	subs map[int]chan string
	next int
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[int]chan string)}
}

func (n *MemoryNotifier) Publish(_ context.Context, collection string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- collection:
		default:
		}
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(_ context.Context) (<-chan string, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan string, 64)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
	}
	return ch, cancel, nil
}
