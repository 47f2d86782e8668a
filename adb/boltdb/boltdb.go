package boltdb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jbclabs/levelsystem/adb"

	bolt "go.etcd.io/bbolt"
)

var _ adb.DB = &DB{}

type DB struct {
	db *bolt.DB
}

func New(dbpath string, filemode os.FileMode) (*DB, error) {
	var err error

	d := &DB{}

	dbpath, err = filepath.Abs(dbpath)
	if err != nil {
		return nil, err
	}

	d.db, err = bolt.Open(dbpath, filemode, &bolt.Options{
		NoFreelistSync: true,
	})

	return d, err
}

func (d *DB) Index(name string) adb.Index {
	err := d.db.Update(func(txn *bolt.Tx) error {
		var err error
		_, err = txn.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		panic(err)
	}

	return []byte(name)
}

func (d *DB) View(f func(txn adb.Txn) error) error {
	return d.db.View(func(t *bolt.Tx) error {
		return f(&Txn{txn: t})
	})
}

func (d *DB) Update(f func(txn adb.Txn) error) error {
	return d.db.Update(func(t *bolt.Tx) error {
		return f(&Txn{txn: t})
	})
}

func (d *DB) Close() error {
	return d.db.Close()
}

type Txn struct {
	txn *bolt.Tx
}

func (t *Txn) Get(d adb.Index, key []byte) []byte {
	return t.txn.Bucket(d.([]byte)).Get(key)
}

func (t *Txn) Put(d adb.Index, key []byte, value []byte) error {
	return t.txn.Bucket(d.([]byte)).Put(key, value)
}

func (t *Txn) Del(d adb.Index, key []byte) error {
	return t.txn.Bucket(d.([]byte)).Delete(key)
}

func (t *Txn) ForEach(d adb.Index, f func(k, v []byte) error) error {
	return t.txn.Bucket(d.([]byte)).ForEach(f)
}

func (t *Txn) ForEachPrefix(d adb.Index, prefix []byte, f func(k, v []byte) error) error {
	c := t.txn.Bucket(d.([]byte)).Cursor()

	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := f(k, v); err != nil {
			return err
		}
	}

	return nil
}

func (t *Txn) Entries(d adb.Index) (uint64, error) {
	buck := t.txn.Bucket(d.([]byte))

	if buck == nil {
		return 0, fmt.Errorf("bucket not found")
	}

	return uint64(buck.Stats().KeyN), nil
}
