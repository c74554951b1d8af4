package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/events"
)

const tallyRetention = 90 * 24 * time.Hour

// DailyTotals is the per-day count and per-currency amount of committed sales.
type DailyTotals struct {
	Date   string                     `json:"date"`
	Count  int64                      `json:"count"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

// Tally accumulates committed sales per day in Redis hashes. Amounts are kept
// in cents so increments stay exact.
type Tally struct {
	client redis.UniversalClient
	prefix string
}

// NewTally builds a tally using keys under prefix.
func NewTally(client redis.UniversalClient, prefix string) *Tally {
	if prefix == "" {
		prefix = "pos:sales:daily"
	}
	return &Tally{client: client, prefix: prefix}
}

// Record adds sale to its day. Replays of the same sale are ignored.
func (t *Tally) Record(ctx context.Context, sale Sale) error {
	if t == nil || t.client == nil {
		return errors.New("sales: tally not configured")
	}
	key := t.key(sale.Date)
	seen := key + ":ids"
	added, err := t.client.SAdd(ctx, seen, sale.ID).Result()
	if err != nil {
		return fmt.Errorf("sales: tally mark: %w", err)
	}
	if added == 0 {
		return nil
	}
	cents := sale.Total.Shift(2).Round(0).IntPart()
	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "count", 1)
		pipe.HIncrBy(ctx, key, "cents:"+sale.Currency, cents)
		pipe.Expire(ctx, key, tallyRetention)
		pipe.Expire(ctx, seen, tallyRetention)
		return nil
	})
	if err != nil {
		_ = t.client.SRem(ctx, seen, sale.ID).Err()
		return fmt.Errorf("sales: tally increment: %w", err)
	}
	return nil
}

// Day reads the totals recorded for day.
func (t *Tally) Day(ctx context.Context, day time.Time) (DailyTotals, error) {
	out := DailyTotals{Date: day.UTC().Format(time.DateOnly), Totals: map[string]decimal.Decimal{}}
	fields, err := t.client.HGetAll(ctx, t.key(day)).Result()
	if err != nil {
		return out, fmt.Errorf("sales: tally read: %w", err)
	}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == "count":
			out.Count = n
		case strings.HasPrefix(field, "cents:"):
			out.Totals[strings.TrimPrefix(field, "cents:")] = decimal.New(n, -2)
		}
	}
	return out, nil
}

func (t *Tally) key(day time.Time) string {
	return t.prefix + ":" + day.UTC().Format(time.DateOnly)
}

// TallyNotifier feeds sale.committed events into a Tally. It serves both as an
// in-process events.Notifier and as the worker's task handler.
type TallyNotifier struct {
	Tally *Tally
}

// Notify records the committed sale carried by event; other topics are ignored.
func (n TallyNotifier) Notify(ctx context.Context, event events.Event) error {
	if event.Topic != events.TopicSaleCommitted {
		return nil
	}
	var sale Sale
	if err := json.Unmarshal(event.Payload, &sale); err != nil {
		return fmt.Errorf("sales: decode committed sale: %w", err)
	}
	if sale.ID == "" {
		return errors.New("sales: committed sale without id")
	}
	return n.Tally.Record(ctx, sale)
}
