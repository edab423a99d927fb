// Package signals turns raw channel messages into structured trade
// signals. The parser is deliberately forgiving: anything that does not
// carry a side, a symbol, an entry, a stop and at least one target is not
// a signal.
package signals

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

// Message is one raw record from the signal source, ordered by arrival.
type Message struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

var (
	signalRe = regexp.MustCompile(`(?i)(?P<side>BUY|SELL)\s+(?P<symbol>[A-Z]{3,6})\s*(?:@|at|entry[: ]+)?\s*(?P<entry>\d+(\.\d+)?).{0,50}?(?:SL[: ]*(?P<sl>\d+(\.\d+)?)).{0,120}?(?P<tps>(?:TP\d?\s*[: ]*\d+(\.\d+)?(?:\s*[,/ ]\s*)?)+)`)
	tpRe     = regexp.MustCompile(`(?i)TP\d?\s*[: ]*(\d+(\.\d+)?)`)
)

// Parse extracts every well-formed signal from the message stream,
// preserving arrival order. Naive timestamps are treated as UTC.
func Parse(messages []Message) []types.Signal {
	var out []types.Signal
	for _, m := range messages {
		sig, ok := parseOne(m)
		if !ok {
			continue
		}
		out = append(out, sig)
	}
	return out
}

func parseOne(m Message) (types.Signal, bool) {
	flat := strings.ReplaceAll(m.Text, "\n", " ")
	match := signalRe.FindStringSubmatch(flat)
	if match == nil {
		return types.Signal{}, false
	}
	group := func(name string) string {
		return match[signalRe.SubexpIndex(name)]
	}

	entry, err := decimal.NewFromString(group("entry"))
	if err != nil {
		return types.Signal{}, false
	}
	stop, err := decimal.NewFromString(group("sl"))
	if err != nil {
		return types.Signal{}, false
	}

	var targets []decimal.Decimal
	for _, tp := range tpRe.FindAllStringSubmatch(group("tps"), -1) {
		price, err := decimal.NewFromString(tp[1])
		if err != nil {
			continue
		}
		targets = append(targets, price)
	}
	if len(targets) == 0 {
		return types.Signal{}, false
	}

	return types.NewSignal(
		m.Date.UTC(),
		types.Side(strings.ToUpper(group("side"))),
		strings.ToUpper(group("symbol")),
		entry,
		stop,
		targets,
		m.Text,
	), true
}
