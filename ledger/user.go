package ledger

import (
	"errors"
	"fmt"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/address"
	"github.com/jbclabs/levelsystem/binary"
	"github.com/jbclabs/levelsystem/util"
)

// Ticket is a user's current entry stake. Id 0 means no ticket was ever
// purchased. A ticket is never deleted, only replaced by an upgrade or
// terminally flagged Exited when the revenue cap is exhausted.
type Ticket struct {
	Id           uint64 `json:"id"`
	Amount       uint64 `json:"amount"`
	PurchaseTime uint64 `json:"purchase_time"`
	Exited       bool   `json:"exited"`
}

type User struct {
	Referrer      address.Address `json:"referrer"` // write-once
	TeamCount     uint64          `json:"team_count"`
	ActiveDirects uint64          `json:"active_directs"`
	TotalRevenue  uint64          `json:"total_revenue"`
	CurrentCap    uint64          `json:"current_cap"`
	McBalance     uint64          `json:"mc_balance"`
	JbcBalance    uint64          `json:"jbc_balance"`
	MaxTicket     uint64          `json:"max_ticket"`
	NumStakes     uint64          `json:"num_stakes"`
	ActiveStakes  uint64          `json:"active_stakes"`
	Active        bool            `json:"active"`
	Ticket        Ticket          `json:"ticket"`
}

func (u *User) Serialize() []byte {
	s := binary.NewSer(make([]byte, 0, 96))

	s.AddUint8(0) // version
	s.AddFixedByteArray(u.Referrer[:])
	s.AddUvarint(u.TeamCount)
	s.AddUvarint(u.ActiveDirects)
	s.AddUvarint(u.TotalRevenue)
	s.AddUvarint(u.CurrentCap)
	s.AddUvarint(u.McBalance)
	s.AddUvarint(u.JbcBalance)
	s.AddUvarint(u.MaxTicket)
	s.AddUvarint(u.NumStakes)
	s.AddUvarint(u.ActiveStakes)
	s.AddBool(u.Active)
	s.AddUvarint(u.Ticket.Id)
	s.AddUvarint(u.Ticket.Amount)
	s.AddUvarint(u.Ticket.PurchaseTime)
	s.AddBool(u.Ticket.Exited)

	return s.Output()
}

func (u *User) Deserialize(d []byte) error {
	s := binary.NewDes(d)

	if s.ReadUint8() != 0 {
		return errors.New("invalid user version")
	}
	u.Referrer = address.Address(s.ReadFixedByteArray(address.SIZE))
	u.TeamCount = s.ReadUvarint()
	u.ActiveDirects = s.ReadUvarint()
	u.TotalRevenue = s.ReadUvarint()
	u.CurrentCap = s.ReadUvarint()
	u.McBalance = s.ReadUvarint()
	u.JbcBalance = s.ReadUvarint()
	u.MaxTicket = s.ReadUvarint()
	u.NumStakes = s.ReadUvarint()
	u.ActiveStakes = s.ReadUvarint()
	u.Active = s.ReadBool()
	u.Ticket.Id = s.ReadUvarint()
	u.Ticket.Amount = s.ReadUvarint()
	u.Ticket.PurchaseTime = s.ReadUvarint()
	u.Ticket.Exited = s.ReadBool()

	return s.Error()
}

func (u *User) String() string {
	return fmt.Sprintf("referrer: %s; team: %d; directs: %d; revenue: %s/%s; active: %v",
		u.Referrer, u.TeamCount, u.ActiveDirects, util.FormatCoin(u.TotalRevenue),
		util.FormatCoin(u.CurrentCap), u.Active)
}

func (e *Engine) getUser(txn adb.Txn, addr address.Address) (*User, error) {
	d := txn.Get(e.Index.User, addr[:])
	if len(d) == 0 {
		return nil, ErrUnknownUser
	}

	u := &User{}
	if err := u.Deserialize(d); err != nil {
		return nil, fmt.Errorf("corrupt user %s: %w", addr, err)
	}
	return u, nil
}

func (e *Engine) getOrCreateUser(txn adb.Txn, addr address.Address) (*User, error) {
	u, err := e.getUser(txn, addr)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, ErrUnknownUser) {
		return &User{}, nil
	}
	return nil, err
}

func (e *Engine) setUser(txn adb.Txn, addr address.Address, u *User) error {
	return txn.Put(e.Index.User, addr[:], u.Serialize())
}

// activate marks the user active and bumps the immediate referrer's
// activeDirects. The caller persists u afterwards.
func (e *Engine) activate(txn adb.Txn, addr address.Address, u *User) error {
	if u.Active {
		return nil
	}
	u.Active = true

	if !u.Referrer.Valid() {
		return nil
	}
	r, err := e.getUser(txn, u.Referrer)
	if err != nil {
		return fmt.Errorf("referrer of %s: %w", addr, err)
	}
	r.ActiveDirects++
	return e.setUser(txn, u.Referrer, r)
}

// deactivate is the inverse of activate: cap exhaustion or redeeming the
// last active stake takes a user out of every reward path.
func (e *Engine) deactivate(txn adb.Txn, addr address.Address, u *User) error {
	if !u.Active {
		return nil
	}
	u.Active = false

	if !u.Referrer.Valid() {
		return nil
	}
	r, err := e.getUser(txn, u.Referrer)
	if err != nil {
		return fmt.Errorf("referrer of %s: %w", addr, err)
	}
	if r.ActiveDirects > 0 {
		r.ActiveDirects--
	}
	return e.setUser(txn, u.Referrer, r)
}

// GetUser is the read-only view of a user's full state.
func (e *Engine) GetUser(addr address.Address) (*User, error) {
	var u *User

	err := e.DB.View(func(txn adb.Txn) error {
		var err error
		u, err = e.getUser(txn, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
