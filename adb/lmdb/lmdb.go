package lmdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/logger"

	lmdb "github.com/PowerDNS/lmdb-go/lmdb"
)

var _ adb.DB = &DB{}

type DB struct {
	env *lmdb.Env

	log *logger.Log

	resizeLock sync.Mutex
}

func New(dbpath string, filemode os.FileMode, log *logger.Log) (*DB, error) {
	var err error

	d := &DB{
		log: log,
	}

	d.env, err = lmdb.NewEnv()
	if err != nil {
		return nil, err
	}

	d.env.SetMaxDBs(16)
	d.env.SetMapSize(512 * 1024)
	d.env.SetFlags(lmdb.WriteMap)

	dbpath, err = filepath.Abs(dbpath)
	if err != nil {
		return nil, err
	}

	err = os.Mkdir(dbpath, filemode)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	err = d.env.Open(dbpath, 0, filemode)
	if err != nil {
		d.env.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) Index(name string) (dbi adb.Index) {
	err := d.env.Update(func(txn *lmdb.Txn) error {
		var err error
		dbi, err = txn.CreateDBI(name)
		return err
	})
	if err != nil {
		panic(err)
	}

	return
}

func (d *DB) View(f func(txn adb.Txn) error) error {
	return d.env.View(func(t *lmdb.Txn) error {
		return f(&Txn{txn: t})
	})
}

const GB = 1024 * 1024 * 1024

func (d *DB) Update(f func(txn adb.Txn) error) error {
	info, err := d.env.Info()
	if err != nil {
		return err
	}

	stat, err := d.env.Stat()
	if err != nil {
		return err
	}

	sizeUsed := int64(stat.PSize) * info.LastPNO

	free := 1 - float64(sizeUsed)/float64(info.MapSize)

	if free < 0.1 {
		err := func() error {
			d.resizeLock.Lock()
			defer d.resizeLock.Unlock()

			newSize := info.MapSize * 2
			// increment at most by 1 GiB
			if info.MapSize > 1*GB {
				newSize = info.MapSize + GB
			}

			d.log.Infof("LMDB mapsize increase: %vMiB -> %vMiB",
				float64(info.MapSize)/1024/1024, float64(newSize)/1024/1024)

			return d.env.SetMapSize(newSize)
		}()
		if err != nil {
			return err
		}
	}

	return d.env.Update(func(t *lmdb.Txn) error {
		return f(&Txn{txn: t})
	})
}

func (d *DB) Close() error {
	return d.env.Close()
}

type Txn struct {
	txn *lmdb.Txn
}

func (t *Txn) Get(d adb.Index, key []byte) []byte {
	r, err := t.txn.Get(d.(lmdb.DBI), key)
	if err != nil {
		return nil
	}
	return r
}

func (t *Txn) Put(d adb.Index, key []byte, value []byte) error {
	return t.txn.Put(d.(lmdb.DBI), key, value, 0)
}

func (t *Txn) Del(d adb.Index, key []byte) error {
	return t.txn.Del(d.(lmdb.DBI), key, nil)
}

func (t *Txn) ForEach(d adb.Index, f func(k, v []byte) error) error {
	cursor, err := t.txn.OpenCursor(d.(lmdb.DBI))
	if err != nil {
		return err
	}
	defer cursor.Close()

	for {
		key, value, err := cursor.Get(nil, nil, lmdb.Next)
		if lmdb.IsNotFound(err) {
			break
		}
		if err != nil {
			return fmt.Errorf("cursor get: %w", err)
		}

		if err := f(key, value); err != nil {
			return err
		}
	}

	return nil
}

func (t *Txn) ForEachPrefix(d adb.Index, prefix []byte, f func(k, v []byte) error) error {
	cursor, err := t.txn.OpenCursor(d.(lmdb.DBI))
	if err != nil {
		return err
	}
	defer cursor.Close()

	key, value, err := cursor.Get(prefix, nil, lmdb.SetRange)
	for {
		if lmdb.IsNotFound(err) {
			break
		}
		if err != nil {
			return fmt.Errorf("cursor get: %w", err)
		}
		if !bytes.HasPrefix(key, prefix) {
			break
		}

		if err := f(key, value); err != nil {
			return err
		}

		key, value, err = cursor.Get(nil, nil, lmdb.Next)
	}

	return nil
}

func (t *Txn) Entries(d adb.Index) (uint64, error) {
	stat, err := t.txn.Stat(d.(lmdb.DBI))
	if err != nil {
		return 0, err
	}
	return stat.Entries, nil
}
