package ledger

import (
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
)

// Bind sets the user's referrer. The pointer is write-once: rebinding fails
// with AlreadyBound. Self-reference and anything that would close a cycle
// are rejected, so referrer chains always terminate.
func (e *Engine) Bind(userAddr, referrer address.Address) error {
	if !userAddr.Valid() || !referrer.Valid() {
		return ErrUnknownUser
	}
	if userAddr == referrer {
		return ErrSelfReferral
	}

	err := e.DB.Update(func(txn adb.Txn) error {
		u, err := e.getOrCreateUser(txn, userAddr)
		if err != nil {
			return err
		}
		if u.Referrer.Valid() {
			return ErrAlreadyBound
		}

		// Reject if userAddr is an ancestor of the proposed referrer.
		// Chains are acyclic by construction, so the walk terminates.
		cur := referrer
		for cur.Valid() {
			if cur == userAddr {
				return ErrCyclicReferral
			}
			cu, err := e.getUser(txn, cur)
			if err != nil {
				break // unseen ancestor, chain ends here
			}
			cur = cu.Referrer
		}

		r, err := e.getOrCreateUser(txn, referrer)
		if err != nil {
			return err
		}
		// a user who activated before binding counts as an active direct
		// from the moment of the bind
		if u.Active {
			r.ActiveDirects++
		}
		if err := e.setUser(txn, referrer, r); err != nil {
			return err
		}

		u.Referrer = referrer
		if err := e.setUser(txn, userAddr, u); err != nil {
			return err
		}

		// Propagate the new team member up the chain.
		cur = referrer
		for depth := 0; depth < config.MAX_TEAM_DEPTH && cur.Valid(); depth++ {
			cu, err := e.getUser(txn, cur)
			if err != nil {
				return fmt.Errorf("ancestor %s: %w", cur, err)
			}
			cu.TeamCount++
			if err := e.setUser(txn, cur, cu); err != nil {
				return err
			}
			cur = cu.Referrer
		}

		return nil
	})
	if err != nil {
		return err
	}

	Log.Debugf("bound %s under %s", userAddr, referrer)
	return nil
}
