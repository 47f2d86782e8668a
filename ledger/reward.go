package ledger

import (
	"errors"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

// payReferralRewards pays the two immediate referral rewards for a purchase:
//
//   - direct: a flat percent of the purchase to the referrer, if active;
//   - layered: a pool split evenly across MAX_REWARD_LAYERS layers above the
//     referrer. The buyer's depth is counted over active ancestors only
//     (inactive ones don't consume a layer slot), and an ancestor collects
//     only while that depth is within the layers their own activeDirects
//     count unlocks.
//
// Both are paid out immediately, unlike the differential mechanism.
func (e *Engine) payReferralRewards(
	txn adb.Txn, stats *Stats, buyer, referrer address.Address,
	amount, ticketId uint64, events *[]Event,
) error {
	if !referrer.Valid() {
		return nil
	}

	r, err := e.getUser(txn, referrer)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return nil
		}
		return err
	}

	if r.Active {
		direct := util.Percent(amount, config.DIRECT_REWARD_PERCENT)
		if _, err := e.payout(txn, stats, referrer, direct, REWARD_DIRECT, buyer, ticketId, events); err != nil {
			return err
		}
	}

	perLayer := util.Percent(amount, config.LEVEL_REWARD_PERCENT) / config.MAX_REWARD_LAYERS

	layer := uint64(0)
	cur := r.Referrer
	for hops := 0; hops < config.MAX_TEAM_DEPTH && cur.Valid() && layer < config.MAX_REWARD_LAYERS; hops++ {
		cu, err := e.getUser(txn, cur)
		if err != nil {
			if errors.Is(err, ErrUnknownUser) {
				return nil
			}
			return err
		}

		if cu.Active {
			layer++
			if layer <= layersUnlocked(cu.ActiveDirects) {
				if _, err := e.payout(txn, stats, cur, perLayer, REWARD_LAYER, buyer, ticketId, events); err != nil {
					return err
				}
			}
		}

		cur = cu.Referrer
	}

	return nil
}
