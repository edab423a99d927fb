package types

// Side is the direction of a signal or trade.
type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)
