package ratelimit

import (
	"time"

	"github.com/jbclabs/levelsystem/util"
)

type entry struct {
	count     int
	lastClear int64
	banEnds   int64
}

func New(maxPerMinute int) *Limit {
	return &Limit{
		maxPerMinute: maxPerMinute,
		entries:      make(map[string]*entry),
	}
}

type Limit struct {
	maxPerMinute int
	entries      map[string]*entry

	util.Mutex
}

// CanAct charges `amount` requests to ip and reports whether it is still
// allowed to act. Exceeding the per-minute budget bans the ip for two
// minutes.
func (l *Limit) CanAct(ip string, amount int) bool {
	t := time.Now().Unix()

	l.Lock()
	defer l.Unlock()

	e := l.entries[ip]
	if e == nil {
		e = &entry{}
		l.entries[ip] = e
	}

	if e.banEnds > t {
		return false
	}
	if e.lastClear+60 < t {
		e.lastClear = t
		e.count = 0
		return true
	}

	e.count += amount

	if e.count > l.maxPerMinute {
		e.banEnds = t + 120
		return false
	}
	return true
}
