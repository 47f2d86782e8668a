package util

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"strconv"
	"time"

	"github.com/jbclabs/levelsystem/config"

	"github.com/sasha-s/go-deadlock"
)

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

type Mutex = deadlock.Mutex
type RWMutex = deadlock.RWMutex

// FormatCoin renders an atomic amount as a decimal coin string.
func FormatCoin(n uint64) string {
	s := strconv.FormatUint(n, 10)

	digits := len(strconv.FormatUint(config.COIN, 10)) - 1
	for len(s) < digits+1 {
		s = "0" + s
	}

	return s[:len(s)-digits] + "." + s[len(s)-digits:]
}

func PadR(s string, l int) string {
	for len(s) < l {
		s = " " + s
	}
	return s
}
func U64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func SafeAdd(a, b uint64) (uint64, error) {
	if a+b < a {
		return 0, errors.New("overflow")
	}
	return a + b, nil
}

// MulDiv computes a*b/div with a 128-bit intermediate. Panics on div == 0 or
// if the quotient overflows 64 bits; callers must keep inputs in protocol
// range.
func MulDiv(a, b, div uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if div == 0 || hi >= div {
		panic("MulDiv overflow")
	}
	q, _ := bits.Div64(hi, lo, div)
	return q
}

// Percent computes amount*percent/100, truncating.
func Percent(amount, percent uint64) uint64 {
	return MulDiv(amount, percent, 100)
}
