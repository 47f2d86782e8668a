package ledger

import (
	"errors"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/binary"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

// Reserve is the two-sided pricing pool. It exists to value JBC in MC terms
// for the 50/50 payout split and to service swaps; reward payouts read it
// but never move it.
type Reserve struct {
	Mc  uint64 `json:"mc"`
	Jbc uint64 `json:"jbc"`
}

func (r *Reserve) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 16))

	s.AddUint8(0) // version
	s.AddUvarint(r.Mc)
	s.AddUvarint(r.Jbc)

	return s.Output()
}

func (r *Reserve) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	if s.ReadUint8() != 0 {
		return errors.New("invalid reserve version")
	}
	r.Mc = s.ReadUvarint()
	r.Jbc = s.ReadUvarint()

	return s.Error()
}

// ToJbc converts an MC value into JBC units at the reserve price. An empty
// pool prices 1:1.
func (r *Reserve) ToJbc(mcValue uint64) uint64 {
	if r.Mc == 0 || r.Jbc == 0 {
		return mcValue
	}
	return util.MulDiv(mcValue, r.Jbc, r.Mc)
}

// SplitPayout divides an MC-valued reward into the MC half and the JBC half
// converted at the reserve price.
func (r *Reserve) SplitPayout(total uint64) (mc, jbc uint64) {
	mc = total / 2
	jbc = r.ToJbc(total - mc)
	return
}

var reserveKey = []byte("reserve")

func (e *Engine) getReserve(txn adb.Txn) *Reserve {
	r := &Reserve{}

	d := txn.Get(e.Index.Info, reserveKey)
	if len(d) == 0 {
		return r
	}

	if err := r.Deserialize(d); err != nil {
		Log.Fatal("corrupt reserve entry:", err)
	}
	return r
}

func (e *Engine) setReserve(txn adb.Txn, r *Reserve) error {
	return txn.Put(e.Index.Info, reserveKey, r.Serialize())
}

// GetReserve is the read-only view of the pricing pool.
func (e *Engine) GetReserve() (*Reserve, error) {
	var r *Reserve

	err := e.DB.View(func(txn adb.Txn) error {
		r = e.getReserve(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SetReserves bootstraps or tops up the pricing pool. Privileged: the pool
// backing funds are held by the external asset custodian.
func (e *Engine) SetReserves(caller address.Address, mc, jbc uint64) error {
	if !e.Admin.Valid() || caller != e.Admin {
		return ErrUnauthorized
	}

	return e.DB.Update(func(txn adb.Txn) error {
		return e.setReserve(txn, &Reserve{Mc: mc, Jbc: jbc})
	})
}

// Swap trades against the reserve with the constant-product rule. Exactly
// one of mcIn/jbcIn must be non-zero. Tax and slippage protection live in
// the outer AMM deployment, not here.
func (e *Engine) Swap(userAddr address.Address, mcIn, jbcIn uint64) error {
	if !config.SWAP_ENABLED {
		return ErrDisabled
	}
	if (mcIn == 0) == (jbcIn == 0) {
		return ErrInvalidAmount
	}

	return e.DB.Update(func(txn adb.Txn) error {
		u, err := e.getUser(txn, userAddr)
		if err != nil {
			return err
		}

		r := e.getReserve(txn)
		if r.Mc == 0 || r.Jbc == 0 {
			return ErrDisabled // pool not bootstrapped
		}

		if mcIn > 0 {
			if u.McBalance < mcIn {
				return ErrInsufficientBalance
			}
			out := util.MulDiv(r.Jbc, mcIn, r.Mc+mcIn)
			u.McBalance -= mcIn
			u.JbcBalance, err = util.SafeAdd(u.JbcBalance, out)
			if err != nil {
				return err
			}
			r.Mc += mcIn
			r.Jbc -= out
		} else {
			if u.JbcBalance < jbcIn {
				return ErrInsufficientBalance
			}
			out := util.MulDiv(r.Mc, jbcIn, r.Jbc+jbcIn)
			u.JbcBalance -= jbcIn
			u.McBalance, err = util.SafeAdd(u.McBalance, out)
			if err != nil {
				return err
			}
			r.Jbc += jbcIn
			r.Mc -= out
		}

		if err := e.setReserve(txn, r); err != nil {
			return err
		}
		return e.setUser(txn, userAddr, u)
	})
}
