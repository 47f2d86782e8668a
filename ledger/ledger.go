// Package ledger implements the referral reward and level-compression
// engine: tickets, liquidity stakes, the referral graph, static accrual,
// direct/layered referral rewards, differential compression with two-phase
// record/release, the revenue cap, and the AMM pricing reserve.
//
// All state lives behind an adb transaction. Every command is a single
// DB.Update: the storage layer serializes writers, and returning an error
// from the closure rolls back every write, so each command is atomic
// all-or-nothing.
package ledger

import (
	"errors"
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/binary"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/logger"
	"github.com/jbclabs/levelsystem/util"

	"github.com/jonboulle/clockwork"
)

var Log = logger.New()

// used internally to stop adb iteration early
var errStop = errors.New("stop iteration")

type Engine struct {
	DB    adb.DB
	Index Index

	// Clock is the engine's only time source. Production uses the real
	// clock; tests install a clockwork.FakeClock.
	Clock clockwork.Clock

	// Admin may call privileged operations (Credit, SetReserves). The zero
	// address disables them.
	Admin address.Address
}

type Index struct {
	Info    adb.Index
	User    adb.Index
	Stake   adb.Index
	Pending adb.Index
	Event   adb.Index
}

func New(db adb.DB) (*Engine, error) {
	e := &Engine{
		DB:    db,
		Clock: clockwork.NewRealClock(),
	}

	e.Index = Index{
		Info:    db.Index("info"),
		User:    db.Index("user"),
		Stake:   db.Index("stake"),
		Pending: db.Index("pending"),
		Event:   db.Index("event"),
	}

	if config.ADMIN_ADDRESS != "" {
		admin, err := address.FromString(config.ADMIN_ADDRESS)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ADDRESS: %w", err)
		}
		e.Admin = admin
	}

	var stats *Stats
	var users uint64
	err := e.DB.View(func(txn adb.Txn) error {
		stats = e.GetStats(txn)
		users, _ = txn.Entries(e.Index.User)
		return nil
	})
	if err != nil {
		return nil, err
	}

	Log.Info("Ledger opened")
	Log.Infof("Users: %d", users)
	Log.Infof("Tickets sold: %d, volume %s MC", stats.LastTicketId, util.FormatCoin(stats.TicketVolume))
	Log.Infof("Total staked: %s MC", util.FormatCoin(stats.TotalStaked))
	Log.Debugf("Event sequence: %d", stats.EventSeq)

	return e, nil
}

func (e *Engine) Close() error {
	return e.DB.Close()
}

func (e *Engine) now() uint64 {
	return uint64(e.Clock.Now().Unix())
}

// Stats holds the ledger-wide counters. Commands mutate a single copy and
// persist it once at the end of their transaction.
type Stats struct {
	LastTicketId uint64
	EventSeq     uint64
	TicketVolume uint64
	TotalStaked  uint64
}

func (s *Stats) Serialize() []byte {
	b := binary.NewSer(make([]byte, 0, 32))

	b.AddUint8(0) // version
	b.AddUvarint(s.LastTicketId)
	b.AddUvarint(s.EventSeq)
	b.AddUvarint(s.TicketVolume)
	b.AddUvarint(s.TotalStaked)

	return b.Output()
}

func (s *Stats) Deserialize(d []byte) error {
	b := binary.NewDes(d)

	if b.ReadUint8() != 0 {
		return errors.New("invalid stats version")
	}
	s.LastTicketId = b.ReadUvarint()
	s.EventSeq = b.ReadUvarint()
	s.TicketVolume = b.ReadUvarint()
	s.TotalStaked = b.ReadUvarint()

	return b.Error()
}

var statsKey = []byte("stats")

func (e *Engine) GetStats(txn adb.Txn) *Stats {
	s := &Stats{}

	d := txn.Get(e.Index.Info, statsKey)
	if len(d) == 0 {
		return s
	}

	if err := s.Deserialize(d); err != nil {
		Log.Fatal("corrupt stats entry:", err)
	}
	return s
}

func (e *Engine) SetStats(txn adb.Txn, s *Stats) error {
	return txn.Put(e.Index.Info, statsKey, s.Serialize())
}

// Info returns the ledger-wide counters and the number of known users.
func (e *Engine) Info() (*Stats, uint64, error) {
	var stats *Stats
	var users uint64

	err := e.DB.View(func(txn adb.Txn) error {
		stats = e.GetStats(txn)
		users, _ = txn.Entries(e.Index.User)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return stats, users, nil
}

// Credit funds an account. It is a privileged operation: token custody is
// external, so value enters the ledger only through the configured admin
// principal.
func (e *Engine) Credit(caller, userAddr address.Address, mc, jbc uint64) error {
	if !e.Admin.Valid() || caller != e.Admin {
		return ErrUnauthorized
	}

	err := e.DB.Update(func(txn adb.Txn) error {
		u, err := e.getOrCreateUser(txn, userAddr)
		if err != nil {
			return err
		}

		u.McBalance, err = util.SafeAdd(u.McBalance, mc)
		if err != nil {
			return fmt.Errorf("mc balance: %w", err)
		}
		u.JbcBalance, err = util.SafeAdd(u.JbcBalance, jbc)
		if err != nil {
			return fmt.Errorf("jbc balance: %w", err)
		}

		return e.setUser(txn, userAddr, u)
	})
	if err != nil {
		return err
	}

	Log.Debugf("credited %s: %s MC, %s JBC", userAddr, util.FormatCoin(mc), util.FormatCoin(jbc))
	return nil
}
