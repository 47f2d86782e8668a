package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util"
)

func useTestUnit(t *testing.T) {
	t.Helper()
	oldUnit := config.UNIT_SECONDS
	config.UNIT_SECONDS = 60
	t.Cleanup(func() { config.UNIT_SECONDS = oldUnit })
}

func TestStakeValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	alice := addrOf("alice")

	if _, err := e.Stake(alice, 150*config.COIN, 14); !errors.Is(err, ErrInvalidCycle) {
		t.Fatalf("expected ErrInvalidCycle, got %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}

	fund(t, e, alice, 100*config.COIN)

	// no ticket to match against
	if _, err := e.Stake(alice, 150*config.COIN, 7); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := e.Purchase(alice, 100*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// amount must be exactly ticket * multiplier
	if _, err := e.Stake(alice, 100*config.COIN, 7); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	fund(t, e, alice, 150*config.COIN)
	events, err := e.Stake(alice, 150*config.COIN, 7)
	if err != nil {
		t.Fatalf("stake failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EvLiquidityStaked || events[0].StakeId != 0 {
		t.Fatalf("unexpected events: %v", events)
	}

	u := mustUser(t, e, alice)
	if u.NumStakes != 1 || u.ActiveStakes != 1 {
		t.Fatalf("unexpected stake counters: %d/%d", u.ActiveStakes, u.NumStakes)
	}
	if u.McBalance != 0 {
		t.Fatalf("expected zero balance, got %d", u.McBalance)
	}
}

func TestStakingDisabled(t *testing.T) {
	old := config.STAKING_ENABLED
	config.STAKING_ENABLED = false
	t.Cleanup(func() { config.STAKING_ENABLED = old })

	e, _ := newTestEngine(t)
	if _, err := e.Stake(addrOf("alice"), 150*config.COIN, 7); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestStaticAccrual(t *testing.T) {
	useTestUnit(t)
	e, fc := newTestEngine(t)
	alice := addrOf("alice")

	fund(t, e, alice, 250*config.COIN)
	if _, err := e.Purchase(alice, 100*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); err != nil {
		t.Fatalf("stake failed: %v", err)
	}

	rate := config.STAKE_RATES_PPB[7]
	principal := uint64(150 * config.COIN)

	// mid-unit time does not accrue
	fc.Advance(59 * time.Second)
	stakes, err := e.GetStakes(alice)
	if err != nil {
		t.Fatalf("get stakes failed: %v", err)
	}
	if stakes[0].Pending != 0 {
		t.Fatalf("expected no accrual before the first unit, got %d", stakes[0].Pending)
	}

	fc.Advance(time.Second) // one full unit
	fc.Advance(2 * 60 * time.Second)

	want := util.MulDiv(principal, rate*3, 1_000_000_000)
	stakes, err = e.GetStakes(alice)
	if err != nil {
		t.Fatalf("get stakes failed: %v", err)
	}
	if stakes[0].Pending != want {
		t.Fatalf("expected pending %d after 3 units, got %d", want, stakes[0].Pending)
	}
	if sum, err := e.PendingStatic(alice); err != nil || sum != want {
		t.Fatalf("expected claimable %d, got %d (%v)", want, sum, err)
	}

	events, err := e.ClaimStatic(alice)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EvRewardClaimed || events[0].RewardType != REWARD_STATIC {
		t.Fatalf("unexpected events: %v", events)
	}

	u := mustUser(t, e, alice)
	if u.McBalance != want/2 || u.JbcBalance != want-want/2 {
		t.Fatalf("unexpected balances after claim: %d MC, %d JBC", u.McBalance, u.JbcBalance)
	}
	if u.TotalRevenue != want {
		t.Fatalf("expected revenue %d, got %d", want, u.TotalRevenue)
	}

	// claiming again right away yields nothing
	events, err = e.ClaimStatic(alice)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events on immediate re-claim, got %v", events)
	}

	// accrual stops at the end of the cycle
	fc.Advance(100 * 60 * time.Second)
	total := util.MulDiv(principal, rate*7, 1_000_000_000)
	stakes, err = e.GetStakes(alice)
	if err != nil {
		t.Fatalf("get stakes failed: %v", err)
	}
	if stakes[0].Pending != total-want {
		t.Fatalf("expected pending %d after maturity, got %d", total-want, stakes[0].Pending)
	}
	if !stakes[0].Matured {
		t.Fatal("expected stake to be matured")
	}
}

func TestRedeem(t *testing.T) {
	useTestUnit(t)
	e, fc := newTestEngine(t)
	alice := addrOf("alice")

	fund(t, e, alice, 251*config.COIN)
	if _, err := e.Purchase(alice, 100*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); err != nil {
		t.Fatalf("stake failed: %v", err)
	}

	if _, err := e.Redeem(alice, 5); !errors.Is(err, ErrInvalidStake) {
		t.Fatalf("expected ErrInvalidStake, got %v", err)
	}

	fc.Advance(7*60*time.Second - time.Second)
	if _, err := e.Redeem(alice, 0); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("expected ErrNotExpired, got %v", err)
	}

	fc.Advance(time.Second)
	events, err := e.Redeem(alice, 0)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	accrued := util.MulDiv(150*config.COIN, config.STAKE_RATES_PPB[7]*7, 1_000_000_000)

	claimed := false
	for _, ev := range events {
		if ev.Kind == EvRewardClaimed {
			claimed = true
			if ev.McAmount+ev.JbcAmount != accrued {
				t.Fatalf("expected drained accrual %d, got %d MC + %d JBC",
					accrued, ev.McAmount, ev.JbcAmount)
			}
		}
	}
	if !claimed {
		t.Fatal("expected the remaining accrual to be drained at redemption")
	}

	// fee is 1% of the max ticket; principal comes back once
	u := mustUser(t, e, alice)
	want := 1*config.COIN - 1*config.COIN + 150*config.COIN + accrued/2
	if u.McBalance != uint64(want) {
		t.Fatalf("expected balance %d, got %d", want, u.McBalance)
	}
	if u.ActiveStakes != 0 {
		t.Fatalf("expected no active stakes, got %d", u.ActiveStakes)
	}
	if u.Active {
		t.Fatal("expected user to deactivate after redeeming the last stake")
	}

	stakes, err := e.GetStakes(alice)
	if err != nil {
		t.Fatalf("get stakes failed: %v", err)
	}
	if stakes[0].Active || stakes[0].Pending != 0 {
		t.Fatalf("unexpected closed stake: %+v", stakes[0])
	}

	stats, _, err := e.Info()
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if stats.TotalStaked != 0 {
		t.Fatalf("expected zero total staked, got %d", stats.TotalStaked)
	}
}

func TestRedeemFeeAtomicity(t *testing.T) {
	useTestUnit(t)
	e, fc := newTestEngine(t)
	alice := addrOf("alice")

	// funded exactly ticket + stake: nothing left for the fee
	fund(t, e, alice, 250*config.COIN)
	if _, err := e.Purchase(alice, 100*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); err != nil {
		t.Fatalf("stake failed: %v", err)
	}

	fc.Advance(7 * 60 * time.Second)
	if _, err := e.Redeem(alice, 0); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// the failed redemption left everything untouched
	u := mustUser(t, e, alice)
	if u.ActiveStakes != 1 || u.McBalance != 0 {
		t.Fatalf("failed redeem mutated state: %s", u)
	}
	stakes, err := e.GetStakes(alice)
	if err != nil {
		t.Fatalf("get stakes failed: %v", err)
	}
	if !stakes[0].Active {
		t.Fatal("expected stake to remain active")
	}

	// claiming the accrual funds the fee, then redemption goes through
	if _, err := e.ClaimStatic(alice); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := e.Redeem(alice, 0); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
}

func TestStakeReactivates(t *testing.T) {
	useTestUnit(t)
	e, fc := newTestEngine(t)
	root := addrOf("root")
	alice := addrOf("alice")

	putUser(t, e, root, uplineUser(address.INVALID_ADDRESS, 0, 100, true))
	if err := e.Bind(alice, root); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	fund(t, e, alice, 600*config.COIN)
	if _, err := e.Purchase(alice, 100*config.COIN); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := e.Stake(alice, 150*config.COIN, 7); err != nil {
		t.Fatalf("stake failed: %v", err)
	}
	if mustUser(t, e, root).ActiveDirects != 1 {
		t.Fatal("expected root to have 1 active direct")
	}

	fc.Advance(7 * 60 * time.Second)
	if _, err := e.Redeem(alice, 0); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if mustUser(t, e, alice).Active {
		t.Fatal("expected alice inactive after redeeming out")
	}
	if mustUser(t, e, root).ActiveDirects != 0 {
		t.Fatal("expected root to have no active directs")
	}

	// locking liquidity again re-enters the reward paths
	if _, err := e.Stake(alice, 150*config.COIN, 15); err != nil {
		t.Fatalf("stake failed: %v", err)
	}
	if !mustUser(t, e, alice).Active {
		t.Fatal("expected alice active after staking again")
	}
	if mustUser(t, e, root).ActiveDirects != 1 {
		t.Fatal("expected root to have 1 active direct again")
	}
}
