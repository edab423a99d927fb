package types

import "time"

type Interval string

const (
	M1  Interval = "M1"
	M5  Interval = "M5"
	M15 Interval = "M15"
	M30 Interval = "M30"
	H1  Interval = "H1"
	H4  Interval = "H4"
	D1  Interval = "D1"
)

var IntervalToTime = map[Interval]time.Duration{
	M1:  time.Minute,
	M5:  time.Minute * 5,
	M15: time.Minute * 15,
	M30: time.Minute * 30,
	H1:  time.Hour,
	H4:  time.Hour * 4,
	D1:  time.Hour * 24,
}

var ConvertInterval = map[string]Interval{
	"M1":  M1,
	"M5":  M5,
	"M15": M15,
	"M30": M30,
	"H1":  H1,
	"H4":  H4,
	"D1":  D1,
}
