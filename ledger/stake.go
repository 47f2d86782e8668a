package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/binary"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

// Stake is one time-locked liquidity deposit. Ids are per-user, sequential
// from zero, and double as the redemption index.
type Stake struct {
	Id        uint64 `json:"id"`
	Amount    uint64 `json:"amount"`
	CycleDays uint64 `json:"cycle_days"`
	StartTime uint64 `json:"start_time"`
	Paid      uint64 `json:"paid"` // cumulative MC value released as static reward
	Active    bool   `json:"active"`
}

func (st *Stake) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 48))

	s.AddUint8(0) // version
	s.AddUvarint(st.Id)
	s.AddUvarint(st.Amount)
	s.AddUvarint(st.CycleDays)
	s.AddUvarint(st.StartTime)
	s.AddUvarint(st.Paid)
	s.AddBool(st.Active)

	return s.Output()
}

func (st *Stake) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	if s.ReadUint8() != 0 {
		return errors.New("invalid stake version")
	}
	st.Id = s.ReadUvarint()
	st.Amount = s.ReadUvarint()
	st.CycleDays = s.ReadUvarint()
	st.StartTime = s.ReadUvarint()
	st.Paid = s.ReadUvarint()
	st.Active = s.ReadBool()

	return s.Error()
}

// MaturesAt returns the first timestamp at which the stake is redeemable.
func (st *Stake) MaturesAt() uint64 {
	return st.StartTime + st.CycleDays*config.UNIT_SECONDS
}

func stakeKey(owner address.Address, id uint64) []byte {
	k := make([]byte, 0, address.SIZE+8)
	k = append(k, owner[:]...)
	return append(k, util.U64Bytes(id)...)
}

func (e *Engine) getStake(txn adb.Txn, owner address.Address, id uint64) (*Stake, error) {
	d := txn.Get(e.Index.Stake, stakeKey(owner, id))
	if len(d) == 0 {
		return nil, ErrInvalidStake
	}

	st := &Stake{}
	if err := st.Deserialize(d); err != nil {
		return nil, fmt.Errorf("corrupt stake %d of %s: %w", id, owner, err)
	}
	return st, nil
}

func (e *Engine) setStake(txn adb.Txn, owner address.Address, st *Stake) error {
	return txn.Put(e.Index.Stake, stakeKey(owner, st.Id), st.Serialize())
}

// Stake locks liquidity against the user's current ticket. The amount must
// equal the ticket amount times the deployment's stake multiplier.
func (e *Engine) Stake(userAddr address.Address, amount, cycleDays uint64) ([]Event, error) {
	if !config.STAKING_ENABLED {
		return nil, ErrDisabled
	}
	if !slices.Contains(config.STAKE_CYCLES, cycleDays) {
		return nil, ErrInvalidCycle
	}

	var events []Event
	err := e.DB.Update(func(txn adb.Txn) error {
		stats := e.GetStats(txn)

		u, err := e.getUser(txn, userAddr)
		if err != nil {
			return err
		}
		if u.Ticket.Id == 0 || u.Ticket.Exited {
			return ErrInvalidAmount // no ticket to match against
		}

		required := util.MulDiv(u.Ticket.Amount, config.STAKE_MULTIPLIER_PERMILLE, 1000)
		if amount != required {
			return ErrInvalidAmount
		}

		if u.McBalance < amount {
			return ErrInsufficientBalance
		}
		u.McBalance -= amount

		st := &Stake{
			Id:        u.NumStakes,
			Amount:    amount,
			CycleDays: cycleDays,
			StartTime: e.now(),
			Active:    true,
		}
		u.NumStakes++
		u.ActiveStakes++

		if err := e.setStake(txn, userAddr, st); err != nil {
			return err
		}
		// a user who redeemed out re-enters the reward paths here
		if err := e.activate(txn, userAddr, u); err != nil {
			return err
		}
		if err := e.setUser(txn, userAddr, u); err != nil {
			return err
		}
		stats.TotalStaked += amount

		err = e.emit(txn, stats, &events, Event{
			Kind:      EvLiquidityStaked,
			User:      userAddr,
			McAmount:  amount,
			CycleDays: cycleDays,
			StakeId:   st.Id,
		})
		if err != nil {
			return err
		}

		return e.SetStats(txn, stats)
	})
	if err != nil {
		return nil, err
	}

	Log.Infof("liquidity staked: %s locked %s MC for %d days", userAddr, util.FormatCoin(amount), cycleDays)
	return events, nil
}

// pendingReward computes the accrued-but-unpaid static reward of a stake.
// Accrual stops once cycleDays units have elapsed.
func pendingReward(st *Stake, now uint64) uint64 {
	if !st.Active || now <= st.StartTime {
		return 0
	}

	units := (now - st.StartTime) / config.UNIT_SECONDS
	if units > st.CycleDays {
		units = st.CycleDays
	}

	accrued := util.MulDiv(st.Amount, config.STAKE_RATES_PPB[st.CycleDays]*units, 1_000_000_000)
	if accrued <= st.Paid {
		return 0
	}
	return accrued - st.Paid
}

// ClaimStatic pays out the accrued static reward of every active stake,
// split 50/50 MC/JBC and clamped by the revenue cap.
func (e *Engine) ClaimStatic(userAddr address.Address) ([]Event, error) {
	var events []Event
	err := e.DB.Update(func(txn adb.Txn) error {
		stats := e.GetStats(txn)

		u, err := e.getUser(txn, userAddr)
		if err != nil {
			return err
		}

		now := e.now()
		ticketId := u.Ticket.Id
		numStakes := u.NumStakes

		// payout rewrites the user entry, so the local copy must not be
		// written back after this point
		for id := uint64(0); id < numStakes; id++ {
			st, err := e.getStake(txn, userAddr, id)
			if err != nil {
				return err
			}
			if !st.Active {
				continue
			}

			pending := pendingReward(st, now)
			if pending == 0 {
				continue
			}

			paid, err := e.payout(txn, stats, userAddr, pending, REWARD_STATIC, address.INVALID_ADDRESS, ticketId, &events)
			if err != nil {
				return err
			}
			if paid == 0 {
				continue
			}

			st.Paid += paid
			if err := e.setStake(txn, userAddr, st); err != nil {
				return err
			}
		}

		return e.SetStats(txn, stats)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// PendingStatic sums the accrued-but-unclaimed static reward over every
// active stake, before any cap clamping.
func (e *Engine) PendingStatic(owner address.Address) (uint64, error) {
	var sum uint64

	err := e.DB.View(func(txn adb.Txn) error {
		u, err := e.getUser(txn, owner)
		if err != nil {
			return err
		}

		now := e.now()
		for id := uint64(0); id < u.NumStakes; id++ {
			st, err := e.getStake(txn, owner, id)
			if err != nil {
				return err
			}
			sum, err = util.SafeAdd(sum, pendingReward(st, now))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// GetStakes lists a user's stakes with their live pending reward.
type StakeInfo struct {
	Stake
	Pending uint64 `json:"pending"`
	Matured bool   `json:"matured"`
}

func (e *Engine) GetStakes(owner address.Address) ([]StakeInfo, error) {
	var infos []StakeInfo

	err := e.DB.View(func(txn adb.Txn) error {
		u, err := e.getUser(txn, owner)
		if err != nil {
			return err
		}

		now := e.now()
		infos = make([]StakeInfo, 0, u.NumStakes)
		for id := uint64(0); id < u.NumStakes; id++ {
			st, err := e.getStake(txn, owner, id)
			if err != nil {
				return err
			}
			infos = append(infos, StakeInfo{
				Stake:   *st,
				Pending: pendingReward(st, now),
				Matured: st.Active && now >= st.MaturesAt(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}
