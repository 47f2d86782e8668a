package ledger

import (
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

// Redeem closes a matured stake: collects the redemption fee, drains the
// stake's remaining static accrual, returns the principal exactly once, and
// releases every differential entry recorded against this stake. Maturity
// is a derived predicate, no explicit transition call exists. Any failure
// (including fee collection) aborts the whole transaction with no state
// change.
func (e *Engine) Redeem(userAddr address.Address, stakeId uint64) ([]Event, error) {
	var events []Event
	err := e.DB.Update(func(txn adb.Txn) error {
		stats := e.GetStats(txn)

		u, err := e.getUser(txn, userAddr)
		if err != nil {
			return err
		}
		if stakeId >= u.NumStakes {
			return ErrInvalidStake
		}

		st, err := e.getStake(txn, userAddr, stakeId)
		if err != nil {
			return err
		}
		if !st.Active {
			return ErrInvalidStake
		}

		now := e.now()
		if now < st.MaturesAt() {
			return ErrNotExpired
		}

		feeBase := u.MaxTicket
		if feeBase == 0 {
			feeBase = u.Ticket.Amount
		}
		fee := util.Percent(feeBase, config.REDEMPTION_FEE_PERCENT)
		if u.McBalance < fee {
			return ErrInsufficientBalance
		}

		ticketId := u.Ticket.Id
		staticPending := pendingReward(st, now)

		u.McBalance -= fee
		u.McBalance, err = util.SafeAdd(u.McBalance, st.Amount)
		if err != nil {
			return err
		}
		u.ActiveStakes--
		if err := e.setUser(txn, userAddr, u); err != nil {
			return err
		}

		// drain the remaining static accrual before closing the stake
		paid, err := e.payout(txn, stats, userAddr, staticPending, REWARD_STATIC, address.INVALID_ADDRESS, ticketId, &events)
		if err != nil {
			return err
		}
		st.Paid += paid
		st.Active = false
		if err := e.setStake(txn, userAddr, st); err != nil {
			return err
		}

		if stats.TotalStaked >= st.Amount {
			stats.TotalStaked -= st.Amount
		}

		if err := e.releaseDifferentials(txn, stats, userAddr, stakeId, ticketId, &events); err != nil {
			return fmt.Errorf("differential release: %w", err)
		}

		// payouts above rewrote the user entry; work on a fresh copy
		u, err = e.getUser(txn, userAddr)
		if err != nil {
			return err
		}
		if u.ActiveStakes == 0 {
			if err := e.deactivate(txn, userAddr, u); err != nil {
				return err
			}
			if err := e.setUser(txn, userAddr, u); err != nil {
				return err
			}
		}

		return e.SetStats(txn, stats)
	})
	if err != nil {
		return nil, err
	}

	Log.Infof("stake %d of %s redeemed", stakeId, userAddr)
	return events, nil
}
