package ledgerrpc

import (
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/ledger"
)

type GetInfoRequest struct {
}
type GetInfoResponse struct {
	Version                 string   `json:"version"`
	Coin                    uint64   `json:"coin"`
	UnitSeconds             uint64   `json:"unit_seconds"`
	TicketDenoms            []uint64 `json:"ticket_denoms"`
	DirectRewardPercent     uint64   `json:"direct_reward_percent"`
	LevelRewardPercent      uint64   `json:"level_reward_percent"`
	RedemptionFeePercent    uint64   `json:"redemption_fee_percent"`
	StakeMultiplierPermille uint64   `json:"stake_multiplier_permille"`
	Users                   uint64   `json:"users"`
	TicketsSold             uint64   `json:"tickets_sold"`
	TicketVolume            uint64   `json:"ticket_volume"`
	TotalStaked             uint64   `json:"total_staked"`
	EventSeq                uint64   `json:"event_seq"`
}

type GetUserRequest struct {
	Address address.Address `json:"address"`
}
type GetUserResponse struct {
	ledger.User
	Level        int    `json:"level"`
	LevelPercent uint64 `json:"level_percent"`
}

type GetStakesRequest struct {
	Address address.Address `json:"address"`
}
type GetStakesResponse struct {
	Stakes []ledger.StakeInfo `json:"stakes"`
}

type GetPendingDifferentialsRequest struct {
	Address address.Address `json:"address"`
}
type GetPendingDifferentialsResponse struct {
	Entries []ledger.PendingDiff `json:"entries"`
}

type GetReserveRequest struct {
}
type GetReserveResponse struct {
	Mc  uint64 `json:"mc"`
	Jbc uint64 `json:"jbc"`
}

type GetEventsRequest struct {
	AfterSeq uint64 `json:"after_seq"`
	Limit    int    `json:"limit"`
}
type GetEventsResponse struct {
	Events []ledger.Event `json:"events"`
}

// TxResponse is shared by every mutating method: the events the command
// emitted, in order.
type TxResponse struct {
	Events []ledger.Event `json:"events"`
}

type BindReferrerRequest struct {
	Address  address.Address `json:"address"`
	Referrer address.Address `json:"referrer"`
}

type PurchaseTicketRequest struct {
	Address address.Address `json:"address"`
	Amount  uint64          `json:"amount"`
}

type StakeLiquidityRequest struct {
	Address   address.Address `json:"address"`
	Amount    uint64          `json:"amount"`
	CycleDays uint64          `json:"cycle_days"`
}

type ClaimStaticRequest struct {
	Address address.Address `json:"address"`
}

type RedeemRequest struct {
	Address address.Address `json:"address"`
	StakeId uint64          `json:"stake_id"`
}

type SwapRequest struct {
	Address address.Address `json:"address"`
	McIn    uint64          `json:"mc_in"`
	JbcIn   uint64          `json:"jbc_in"`
}

type CreditRequest struct {
	Caller  address.Address `json:"caller"`
	Address address.Address `json:"address"`
	Mc      uint64          `json:"mc"`
	Jbc     uint64          `json:"jbc"`
}

type SetReservesRequest struct {
	Caller address.Address `json:"caller"`
	Mc     uint64          `json:"mc"`
	Jbc    uint64          `json:"jbc"`
}
