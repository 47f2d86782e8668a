// Package adb abstracts the ledger's KV storage. Both backends provide
// serializable transactions: a single writer at a time, full rollback when the
// update closure returns an error.
package adb

type DB interface {
	Index(string) Index

	View(func(txn Txn) error) error
	Update(func(txn Txn) error) error
	Close() error
}

type Index any

type Txn interface {
	Get(Index, []byte) []byte
	Put(Index, []byte, []byte) error
	Del(Index, []byte) error
	ForEach(Index, func(k, v []byte) error) error
	// ForEachPrefix visits, in key order, every entry whose key starts with
	// the given prefix.
	ForEachPrefix(Index, []byte, func(k, v []byte) error) error
	Entries(Index) (uint64, error)
}
