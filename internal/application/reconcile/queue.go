package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// The dashboard writes to two backends without a transaction. When the
// secondary (external API) write fails while the primary (inventory store)
// succeeds, the backends diverge and nothing compensates automatically. This
// queue records each divergence so an operator can reconcile by hand; no
// consumer exists in this service.

const defaultKey = "reconcile:inventory"
const maxEntries = 500

// Entry describes one backend divergence.
type Entry struct {
	StockNumber string    `json:"stock_number"`
	UserID      int64     `json:"user_id"`
	Backend     string    `json:"backend"`   // which backend failed
	Operation   string    `json:"operation"` // delete, add, ...
	Reason      string    `json:"reason"`
	At          time.Time `json:"at"`
}

// Queue is a Redis-list-backed divergence log.
type Queue struct {
	Rdb *redis.Client
	Key string
}

func (q *Queue) key() string {
	if q.Key == "" {
		return defaultKey
	}
	return q.Key
}

// Enqueue pushes an entry onto the queue, trimming to the newest maxEntries.
func (q *Queue) Enqueue(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := q.Rdb.LPush(ctx, q.key(), b).Err(); err != nil {
		return err
	}
	return q.Rdb.LTrim(ctx, q.key(), 0, maxEntries-1).Err()
}

// Pending returns up to n newest entries without removing them.
func (q *Queue) Pending(ctx context.Context, n int64) ([]Entry, error) {
	if n <= 0 {
		n = 50
	}
	raw, err := q.Rdb.LRange(ctx, q.key(), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for _, s := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}
