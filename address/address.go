package address

import (
	"errors"
	"math/big"

	"github.com/zeebo/blake3"
)

const SIZE = 20

// wallet prefix for the text encoding
const PREFIX = "j"

type Address [SIZE]byte

// The zero-value of address is considered invalid
var INVALID_ADDRESS = Address{}

// FromSeed derives an address from arbitrary bytes (an external account
// identifier, a public key, a test label). Key custody and signing live in
// the wallet collaborator, not here.
func FromSeed(seed []byte) Address {
	hash := blake3.Sum256(seed)

	return Address(hash[:SIZE])
}

func FromString(p string) (Address, error) {
	if len(p) < 4 || p[:len(PREFIX)] != PREFIX {
		return INVALID_ADDRESS, errors.New("invalid address prefix")
	}
	p = p[len(PREFIX):]

	bigi, success := big.NewInt(0).SetString(p, 36)
	if !success {
		return INVALID_ADDRESS, errors.New("invalid address")
	}

	data := bigi.Bytes()

	if len(data) > SIZE+2 {
		return INVALID_ADDRESS, errors.New("invalid address length")
	}
	// big.Int strips leading zero bytes
	for len(data) < SIZE+2 {
		data = append([]byte{0}, data...)
	}

	sum := checksum(data[2:])
	if data[0] != sum[0] || data[1] != sum[1] {
		return INVALID_ADDRESS, errors.New("invalid address checksum")
	}

	return Address(data[2:]), nil
}

func checksum(a []byte) []byte {
	sum := blake3.Sum256(a)
	return sum[:2]
}

func (a Address) Valid() bool {
	return a != INVALID_ADDRESS
}

func (a Address) String() string {
	b := append(checksum(a[:]), a[:]...)
	return PREFIX + big.NewInt(0).SetBytes(b).Text(36)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Address) UnmarshalJSON(c []byte) error {
	if len(c) < 2 {
		return errors.New("value is too short")
	}

	if c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("invalid string literal")
	}

	addr, err := FromString(string(c[1 : len(c)-1]))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}
