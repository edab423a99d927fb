package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/types"
)

// QuoteListener subscribes to a top-of-book websocket stream and feeds a
// bounded queue. When the consumer falls behind, ticks are dropped rather
// than blocking the read loop; the drop count is observable.
type QuoteListener struct {
	url    string
	logger *zap.Logger

	ticks   chan types.Tick
	dropped atomic.Uint64
}

// bookTickerMessage is the wire shape of one quote update.
type bookTickerMessage struct {
	Symbol string `json:"s"`
	Bid    string `json:"b"`
	Ask    string `json:"a"`
}

func NewQuoteListener(url string, queueSize int, logger *zap.Logger) *QuoteListener {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteListener{
		url:    url,
		logger: logger,
		ticks:  make(chan types.Tick, queueSize),
	}
}

// Ticks is the consumer side of the queue. It is closed when Run returns.
func (l *QuoteListener) Ticks() <-chan types.Tick {
	return l.ticks
}

// Dropped reports how many ticks were discarded because the queue was full.
func (l *QuoteListener) Dropped() uint64 {
	return l.dropped.Load()
}

// Run reads the stream until the context is cancelled or the connection
// fails. It always closes the tick queue on return.
func (l *QuoteListener) Run(ctx context.Context) error {
	defer close(l.ticks)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return fmt.Errorf("dial quote stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	l.logger.Info("quote stream connected", zap.String("url", l.url))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read quote stream: %w", err)
		}

		var msg bookTickerMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			l.logger.Debug("skipping unparseable quote frame", zap.Error(err))
			continue
		}
		bid, err := decimal.NewFromString(msg.Bid)
		if err != nil {
			continue
		}
		ask, err := decimal.NewFromString(msg.Ask)
		if err != nil {
			continue
		}

		tick := types.Tick{
			Symbol: msg.Symbol,
			Time:   time.Now().UTC(),
			Bid:    bid,
			Ask:    ask,
		}

		select {
		case l.ticks <- tick:
		default:
			l.dropped.Add(1)
		}
	}
}
