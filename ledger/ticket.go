package ledger

import (
	"fmt"
	"slices"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

func validDenomination(amount uint64) bool {
	return slices.ContainsFunc(config.TICKET_DENOMS, func(d uint64) bool {
		return d*config.COIN == amount
	})
}

// Purchase creates the user's ticket, or upgrades it if one is active (the
// replacement starts a fresh revenue era). The purchase fans out into the
// immediate referral rewards and records the deferred differential entries
// against the buyer's next stake.
func (e *Engine) Purchase(userAddr address.Address, amount uint64) ([]Event, error) {
	if !validDenomination(amount) {
		return nil, ErrInvalidAmount
	}

	var events []Event
	err := e.DB.Update(func(txn adb.Txn) error {
		stats := e.GetStats(txn)

		u, err := e.getOrCreateUser(txn, userAddr)
		if err != nil {
			return err
		}
		if u.McBalance < amount {
			return ErrInsufficientBalance
		}
		u.McBalance -= amount

		stats.LastTicketId++
		u.Ticket = Ticket{
			Id:           stats.LastTicketId,
			Amount:       amount,
			PurchaseTime: e.now(),
		}
		u.CurrentCap = amount * config.CAP_MULTIPLIER
		u.TotalRevenue = 0
		if amount > u.MaxTicket {
			u.MaxTicket = amount
		}

		if err := e.activate(txn, userAddr, u); err != nil {
			return err
		}
		if err := e.setUser(txn, userAddr, u); err != nil {
			return err
		}
		stats.TicketVolume += amount

		err = e.emit(txn, stats, &events, Event{
			Kind:     EvTicketPurchased,
			User:     userAddr,
			McAmount: amount,
			TicketId: u.Ticket.Id,
		})
		if err != nil {
			return err
		}

		if err := e.payReferralRewards(txn, stats, userAddr, u.Referrer, amount, u.Ticket.Id, &events); err != nil {
			return fmt.Errorf("referral rewards: %w", err)
		}
		if err := e.recordDifferentials(txn, stats, userAddr, u, amount, &events); err != nil {
			return fmt.Errorf("differential recording: %w", err)
		}

		return e.SetStats(txn, stats)
	})
	if err != nil {
		return nil, err
	}

	Log.Infof("ticket purchase: %s bought %s MC", userAddr, util.FormatCoin(amount))
	return events, nil
}

// payout routes a reward valued in MC to addr through the revenue cap: the
// request is clamped to the cap remainder, the paid part is split 50/50
// MC/JBC at the reserve price, and exhausting the cap exits the ticket.
// Returns the MC value actually paid. A clamp is a signal, not an error.
func (e *Engine) payout(
	txn adb.Txn, stats *Stats, addr address.Address, requested uint64,
	rewardType uint8, from address.Address, ticketId uint64, events *[]Event,
) (uint64, error) {
	if requested == 0 {
		return 0, nil
	}

	u, err := e.getUser(txn, addr)
	if err != nil {
		return 0, err
	}

	remaining := uint64(0)
	if u.CurrentCap > u.TotalRevenue {
		remaining = u.CurrentCap - u.TotalRevenue
	}

	paid := min(requested, remaining)

	if paid < requested {
		err = e.emit(txn, stats, events, Event{
			Kind:      EvRewardCapped,
			User:      addr,
			Requested: requested,
			Paid:      paid,
		})
		if err != nil {
			return 0, err
		}
	}

	if paid > 0 {
		mcPart, jbcPart := e.getReserve(txn).SplitPayout(paid)

		u.McBalance, err = util.SafeAdd(u.McBalance, mcPart)
		if err != nil {
			return 0, err
		}
		u.JbcBalance, err = util.SafeAdd(u.JbcBalance, jbcPart)
		if err != nil {
			return 0, err
		}
		u.TotalRevenue += paid

		ev := Event{
			Kind:       EvReferralRewardPaid,
			User:       addr,
			From:       from,
			McAmount:   mcPart,
			JbcAmount:  jbcPart,
			RewardType: rewardType,
			TicketId:   ticketId,
		}
		if rewardType == REWARD_STATIC {
			ev.Kind = EvRewardClaimed
			ev.From = address.INVALID_ADDRESS
		}
		if err := e.emit(txn, stats, events, ev); err != nil {
			return 0, err
		}
	}

	// revenue-cap auto-exit
	if u.TotalRevenue >= u.CurrentCap && !u.Ticket.Exited {
		u.Ticket.Exited = true
		if err := e.deactivate(txn, addr, u); err != nil {
			return 0, err
		}
		Log.Debugf("revenue cap exhausted, ticket %d of %s exited", u.Ticket.Id, addr)
	}

	if err := e.setUser(txn, addr, u); err != nil {
		return 0, err
	}
	return paid, nil
}
