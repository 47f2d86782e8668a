package ledger

import (
	"errors"
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/binary"
	"github.com/jbclabs/levelsystem/util"
)

type EventKind uint8

const (
	EvTicketPurchased EventKind = iota + 1
	EvLiquidityStaked
	EvRewardClaimed
	EvReferralRewardPaid
	EvRewardCapped
	EvDifferentialRecorded
	EvDifferentialReleased
)

// Reward type codes. Wire-compatible with the reference deployment's logs:
// downstream tooling parses them positionally, do not renumber.
const (
	REWARD_STATIC       uint8 = 0
	REWARD_DIRECT       uint8 = 2
	REWARD_LAYER        uint8 = 3
	REWARD_DIFFERENTIAL uint8 = 4
)

// Event is the persisted union of every log schema. Which fields are
// meaningful depends on Kind; String renders the exact positional form.
// For differential events User holds the upline and From the buyer.
type Event struct {
	Seq        uint64          `json:"seq"`
	Kind       EventKind       `json:"kind"`
	User       address.Address `json:"user"`
	From       address.Address `json:"from"`
	McAmount   uint64          `json:"mc_amount"`
	JbcAmount  uint64          `json:"jbc_amount"`
	RewardType uint8           `json:"reward_type"`
	TicketId   uint64          `json:"ticket_id"`
	StakeId    uint64          `json:"stake_id"`
	CycleDays  uint64          `json:"cycle_days"`
	Requested  uint64          `json:"requested"`
	Paid       uint64          `json:"paid"`
}

func (ev *Event) Name() string {
	switch ev.Kind {
	case EvTicketPurchased:
		return "TicketPurchased"
	case EvLiquidityStaked:
		return "LiquidityStaked"
	case EvRewardClaimed:
		return "RewardClaimed"
	case EvReferralRewardPaid:
		return "ReferralRewardPaid"
	case EvRewardCapped:
		return "RewardCapped"
	case EvDifferentialRecorded:
		return "DifferentialRewardRecorded"
	case EvDifferentialReleased:
		return "DifferentialRewardReleased"
	}
	return "Unknown"
}

func (ev *Event) String() string {
	switch ev.Kind {
	case EvTicketPurchased:
		return fmt.Sprintf("TicketPurchased(%s, %d, %d)", ev.User, ev.McAmount, ev.TicketId)
	case EvLiquidityStaked:
		return fmt.Sprintf("LiquidityStaked(%s, %d, %d, %d)", ev.User, ev.McAmount, ev.CycleDays, ev.StakeId)
	case EvRewardClaimed:
		return fmt.Sprintf("RewardClaimed(%s, %d, %d, %d, %d)",
			ev.User, ev.McAmount, ev.JbcAmount, ev.RewardType, ev.TicketId)
	case EvReferralRewardPaid:
		return fmt.Sprintf("ReferralRewardPaid(%s, %s, %d, %d, %d, %d)",
			ev.User, ev.From, ev.McAmount, ev.JbcAmount, ev.RewardType, ev.TicketId)
	case EvRewardCapped:
		return fmt.Sprintf("RewardCapped(%s, %d, %d)", ev.User, ev.Requested, ev.Paid)
	case EvDifferentialRecorded:
		return fmt.Sprintf("DifferentialRewardRecorded(%d, %s, %d)", ev.StakeId, ev.User, ev.McAmount)
	case EvDifferentialReleased:
		return fmt.Sprintf("DifferentialRewardReleased(%d, %s, %d)", ev.StakeId, ev.User, ev.McAmount)
	}
	return "Unknown()"
}

func (ev *Event) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 96))

	s.AddUint8(0) // version
	s.AddUvarint(ev.Seq)
	s.AddUint8(uint8(ev.Kind))
	s.AddFixedByteArray(ev.User[:])
	s.AddFixedByteArray(ev.From[:])
	s.AddUvarint(ev.McAmount)
	s.AddUvarint(ev.JbcAmount)
	s.AddUint8(ev.RewardType)
	s.AddUvarint(ev.TicketId)
	s.AddUvarint(ev.StakeId)
	s.AddUvarint(ev.CycleDays)
	s.AddUvarint(ev.Requested)
	s.AddUvarint(ev.Paid)

	return s.Output()
}

func (ev *Event) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	if s.ReadUint8() != 0 {
		return errors.New("invalid event version")
	}
	ev.Seq = s.ReadUvarint()
	ev.Kind = EventKind(s.ReadUint8())
	ev.User = address.Address(s.ReadFixedByteArray(address.SIZE))
	ev.From = address.Address(s.ReadFixedByteArray(address.SIZE))
	ev.McAmount = s.ReadUvarint()
	ev.JbcAmount = s.ReadUvarint()
	ev.RewardType = s.ReadUint8()
	ev.TicketId = s.ReadUvarint()
	ev.StakeId = s.ReadUvarint()
	ev.CycleDays = s.ReadUvarint()
	ev.Requested = s.ReadUvarint()
	ev.Paid = s.ReadUvarint()

	return s.Error()
}

// emit assigns the next sequence number, appends the event to the log index
// and to the command's result set. Stats are persisted by the command.
func (e *Engine) emit(txn adb.Txn, stats *Stats, events *[]Event, ev Event) error {
	stats.EventSeq++
	ev.Seq = stats.EventSeq

	if err := txn.Put(e.Index.Event, util.U64Bytes(ev.Seq), ev.Serialize()); err != nil {
		return err
	}

	*events = append(*events, ev)
	Log.Debug(ev.String())
	return nil
}

// GetEvents returns up to limit events with sequence numbers strictly
// greater than afterSeq, in order.
func (e *Engine) GetEvents(afterSeq uint64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	events := make([]Event, 0, limit)
	err := e.DB.View(func(txn adb.Txn) error {
		return txn.ForEach(e.Index.Event, func(k, v []byte) error {
			ev := Event{}
			if err := ev.Deserialize(v); err != nil {
				return err
			}
			if ev.Seq <= afterSeq {
				return nil
			}
			events = append(events, ev)
			if len(events) >= limit {
				return errStop
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	return events, nil
}
