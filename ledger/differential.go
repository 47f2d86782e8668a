package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

// PendingDiff is one recorded-but-unreleased differential entry, keyed by
// (owner stake, upline). It is consumed exactly once, at the owning stake's
// redemption.
type PendingDiff struct {
	StakeId uint64          `json:"stake_id"`
	Upline  address.Address `json:"upline"`
	Amount  uint64          `json:"amount"`
}

func pendingKey(owner address.Address, stakeId uint64, upline address.Address) []byte {
	k := make([]byte, 0, address.SIZE*2+8)
	k = append(k, owner[:]...)
	k = append(k, util.U64Bytes(stakeId)...)
	return append(k, upline[:]...)
}

func pendingPrefix(owner address.Address, stakeId uint64) []byte {
	k := make([]byte, 0, address.SIZE+8)
	k = append(k, owner[:]...)
	return append(k, util.U64Bytes(stakeId)...)
}

// recordDifferentials walks the buyer's referral chain upward computing the
// marginal level-percent reward for each qualifying ancestor:
//
//   - inactive ancestors are skipped without affecting the running max;
//   - the reward base is capped at the ancestor's own ticket size, burning
//     the excess when the ancestor under-invested (bottleneck rule);
//   - an ancestor whose percent does not exceed the highest percent already
//     recorded below gets nothing (compression).
//
// Nothing is paid here. Entries are recorded against the buyer's next stake
// (ids are per-user sequential, so the index is known before the stake
// exists) and released when that stake is redeemed. If the buyer never
// locks the matching liquidity, the entries are never released.
func (e *Engine) recordDifferentials(
	txn adb.Txn, stats *Stats, buyer address.Address, bu *User,
	amount uint64, events *[]Event,
) error {
	stakeId := bu.NumStakes

	prevMaxPercent := uint64(0)
	cur := bu.Referrer
	for hop := 0; hop < config.MAX_COMPRESSION_HOPS && cur.Valid(); hop++ {
		cu, err := e.getUser(txn, cur)
		if err != nil {
			if errors.Is(err, ErrUnknownUser) {
				return nil
			}
			return err
		}

		if !cu.Active {
			cur = cu.Referrer
			continue
		}

		_, percent := Level(cu.TeamCount)
		if percent > prevMaxPercent {
			base := min(amount, cu.Ticket.Amount)
			reward := util.Percent(base, percent-prevMaxPercent)

			if reward > 0 {
				if err := e.addPending(txn, buyer, stakeId, cur, reward); err != nil {
					return err
				}
				err = e.emit(txn, stats, events, Event{
					Kind:     EvDifferentialRecorded,
					User:     cur,
					From:     buyer,
					McAmount: reward,
					StakeId:  stakeId,
				})
				if err != nil {
					return err
				}
			}
			prevMaxPercent = percent
		}

		cur = cu.Referrer
	}

	return nil
}

func (e *Engine) addPending(txn adb.Txn, owner address.Address, stakeId uint64, upline address.Address, amount uint64) error {
	key := pendingKey(owner, stakeId, upline)

	// upgrades before staking accumulate into the same slot
	prev := uint64(0)
	if d := txn.Get(e.Index.Pending, key); len(d) > 0 {
		var n int
		prev, n = binary.Uvarint(d)
		if n <= 0 {
			return fmt.Errorf("corrupt pending entry for %s", upline)
		}
	}

	amount, err := util.SafeAdd(amount, prev)
	if err != nil {
		return err
	}
	return txn.Put(e.Index.Pending, key, binary.AppendUvarint(nil, amount))
}

// releaseDifferentials consumes every pending entry recorded against the
// stake, paying each upline through the revenue cap. Consumed entries are
// deleted, so a second release of the same stake is a no-op.
func (e *Engine) releaseDifferentials(
	txn adb.Txn, stats *Stats, owner address.Address, stakeId, ticketId uint64, events *[]Event,
) error {
	// collect first: payouts mutate the index space we are cursoring
	entries := make([]PendingDiff, 0, 4)
	err := txn.ForEachPrefix(e.Index.Pending, pendingPrefix(owner, stakeId), func(k, v []byte) error {
		amount, n := binary.Uvarint(v)
		if n <= 0 {
			return fmt.Errorf("corrupt pending entry %x", k)
		}
		entries = append(entries, PendingDiff{
			StakeId: stakeId,
			Upline:  address.Address(k[len(k)-address.SIZE:]),
			Amount:  amount,
		})
		return nil
	})
	if err != nil {
		return err
	}

	for _, pd := range entries {
		if err := txn.Del(e.Index.Pending, pendingKey(owner, stakeId, pd.Upline)); err != nil {
			return err
		}

		if _, err := e.payout(txn, stats, pd.Upline, pd.Amount, REWARD_DIFFERENTIAL, owner, ticketId, events); err != nil {
			return err
		}

		err = e.emit(txn, stats, events, Event{
			Kind:     EvDifferentialReleased,
			User:     pd.Upline,
			From:     owner,
			McAmount: pd.Amount,
			StakeId:  stakeId,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// PendingDifferentials lists the unreleased entries recorded against a
// user's stakes.
func (e *Engine) PendingDifferentials(owner address.Address) ([]PendingDiff, error) {
	entries := []PendingDiff{}

	err := e.DB.View(func(txn adb.Txn) error {
		return txn.ForEachPrefix(e.Index.Pending, owner[:], func(k, v []byte) error {
			amount, n := binary.Uvarint(v)
			if n <= 0 {
				return fmt.Errorf("corrupt pending entry %x", k)
			}
			entries = append(entries, PendingDiff{
				StakeId: binary.BigEndian.Uint64(k[address.SIZE : address.SIZE+8]),
				Upline:  address.Address(k[len(k)-address.SIZE:]),
				Amount:  amount,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
