package ledger

import (
	"errors"
	"testing"

	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

func TestSplitPayout(t *testing.T) {
	// empty pool prices 1:1
	empty := &Reserve{}
	mc, jbc := empty.SplitPayout(100 * config.COIN)
	if mc != 50*config.COIN || jbc != 50*config.COIN {
		t.Fatalf("unexpected fallback split: %d MC, %d JBC", mc, jbc)
	}

	// 2 MC per JBC
	r := &Reserve{Mc: 2000 * config.COIN, Jbc: 1000 * config.COIN}
	mc, jbc = r.SplitPayout(100 * config.COIN)
	if mc != 50*config.COIN || jbc != 25*config.COIN {
		t.Fatalf("unexpected split: %d MC, %d JBC", mc, jbc)
	}

	// odd totals round the MC half down, the JBC half keeps the remainder
	mc, jbc = empty.SplitPayout(101)
	if mc != 50 || jbc != 51 {
		t.Fatalf("unexpected odd split: %d MC, %d JBC", mc, jbc)
	}
}

func TestSetReserves(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := addrOf("alice")

	if err := e.SetReserves(alice, 1, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := e.SetReserves(e.Admin, 2000*config.COIN, 1000*config.COIN); err != nil {
		t.Fatalf("set reserves failed: %v", err)
	}

	r, err := e.GetReserve()
	if err != nil {
		t.Fatalf("get reserve failed: %v", err)
	}
	if r.Mc != 2000*config.COIN || r.Jbc != 1000*config.COIN {
		t.Fatalf("unexpected reserve: %+v", r)
	}
}

func TestSwap(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := addrOf("alice")
	fund(t, e, alice, 100*config.COIN)

	// exactly one side must be provided
	if err := e.Swap(alice, 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := e.Swap(alice, 1, 1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	// pool not bootstrapped yet
	if err := e.Swap(alice, 100*config.COIN, 0); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	if err := e.SetReserves(e.Admin, 1000*config.COIN, 1000*config.COIN); err != nil {
		t.Fatalf("set reserves failed: %v", err)
	}

	if err := e.Swap(alice, 200*config.COIN, 0); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	in := uint64(100 * config.COIN)
	out := util.MulDiv(1000*config.COIN, in, 1000*config.COIN+in)
	if err := e.Swap(alice, in, 0); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	u := mustUser(t, e, alice)
	if u.McBalance != 0 || u.JbcBalance != out {
		t.Fatalf("unexpected balances: %d MC, %d JBC (expected out %d)",
			u.McBalance, u.JbcBalance, out)
	}

	r, err := e.GetReserve()
	if err != nil {
		t.Fatalf("get reserve failed: %v", err)
	}
	if r.Mc != 1000*config.COIN+in || r.Jbc != 1000*config.COIN-out {
		t.Fatalf("unexpected reserve after swap: %+v", r)
	}

	// swap the JBC back the other way
	back := util.MulDiv(r.Mc, out, r.Jbc+out)
	if err := e.Swap(alice, 0, out); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	u = mustUser(t, e, alice)
	if u.JbcBalance != 0 || u.McBalance != back {
		t.Fatalf("unexpected balances after round trip: %d MC, %d JBC", u.McBalance, u.JbcBalance)
	}
	// the pool keeps the rounding margin
	if u.McBalance > in {
		t.Fatalf("round trip created value: %d > %d", u.McBalance, in)
	}
}

func TestSwapDisabled(t *testing.T) {
	old := config.SWAP_ENABLED
	config.SWAP_ENABLED = false
	t.Cleanup(func() { config.SWAP_ENABLED = old })

	e, _ := newTestEngine(t)
	if err := e.Swap(addrOf("alice"), 1, 0); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestPayoutUsesReservePrice(t *testing.T) {
	e, _ := newTestEngine(t)
	rita := addrOf("rita")
	bob := addrOf("bob")

	// 4 MC per JBC: the JBC half of every payout shrinks accordingly
	if err := e.SetReserves(e.Admin, 4000*config.COIN, 1000*config.COIN); err != nil {
		t.Fatalf("set reserves failed: %v", err)
	}

	if err := e.Bind(bob, rita); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	fund(t, e, rita, 1000*config.COIN)
	fund(t, e, bob, 1000*config.COIN)
	if _, err := e.Purchase(rita, 1000*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := e.Purchase(bob, 1000*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// direct reward of 250: 125 MC plus 125 MC worth of JBC at 1/4
	u := mustUser(t, e, rita)
	if u.McBalance != 125*config.COIN {
		t.Fatalf("expected 125 MC, got %s", util.FormatCoin(u.McBalance))
	}
	if u.JbcBalance != 125*config.COIN/4 {
		t.Fatalf("expected %s JBC, got %s",
			util.FormatCoin(125*config.COIN/4), util.FormatCoin(u.JbcBalance))
	}
	// revenue counts the full MC value, not the split
	if u.TotalRevenue != 250*config.COIN {
		t.Fatalf("expected revenue %d, got %d", 250*config.COIN, u.TotalRevenue)
	}
}
