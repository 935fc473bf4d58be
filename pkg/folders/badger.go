package folders

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/transpoze/drivegate/internal/logger"
)

// Key layout: folder:{parentID}\x00{name} -> id
const prefixFolder = "folder:"

// BadgerCache persists folder keys so resolutions survive restarts.
//
// Storage errors are logged and treated as misses: a lost entry costs one
// extra Drive query, never a wrong answer.
type BadgerCache struct {
	db  *badgerdb.DB
	ttl time.Duration
}

// OpenBadgerCache opens (or creates) a badger database at path.
func OpenBadgerCache(path string, ttl time.Duration) (*BadgerCache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := badgerdb.Open(badgerdb.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

func encodeKey(k Key) []byte {
	return []byte(prefixFolder + k.ParentID + "\x00" + k.Name)
}

func decodeKey(b []byte) Key {
	rest := strings.TrimPrefix(string(b), prefixFolder)
	parent, name, _ := strings.Cut(rest, "\x00")
	return Key{ParentID: parent, Name: name}
}

func (c *BadgerCache) Get(key Key) (string, bool) {
	var id string
	err := c.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = string(val)
		return nil
	})
	if err != nil {
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			logger.Warn("Folder cache read failed", logger.KeyCacheKey, key.String(), logger.KeyError, err)
		}
		return "", false
	}
	return id, true
}

func (c *BadgerCache) Put(key Key, id string) {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		e := badgerdb.NewEntry(encodeKey(key), []byte(id))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		logger.Warn("Folder cache write failed", logger.KeyCacheKey, key.String(), logger.KeyError, err)
	}
}

func (c *BadgerCache) Invalidate(key Key) {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(encodeKey(key))
	})
	if err != nil {
		logger.Warn("Folder cache delete failed", logger.KeyCacheKey, key.String(), logger.KeyError, err)
	}
}

func (c *BadgerCache) InvalidateByValue(id string) int {
	var stale [][]byte
	err := c.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFolder)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				if string(val) == id {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Folder cache scan failed", logger.KeyFolderID, id, logger.KeyError, err)
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	err = c.db.Update(func(txn *badgerdb.Txn) error {
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Folder cache delete failed", logger.KeyFolderID, id, logger.KeyError, err)
		return 0
	}
	for _, k := range stale {
		logger.Debug("Folder cache entry invalidated", logger.KeyCacheKey, decodeKey(k).String(), logger.KeyFolderID, id)
	}
	return len(stale)
}

func (c *BadgerCache) Clear() {
	if err := c.db.DropPrefix([]byte(prefixFolder)); err != nil {
		logger.Warn("Folder cache clear failed", logger.KeyError, err)
	}
}

func (c *BadgerCache) Len() int {
	n := 0
	_ = c.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFolder)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Close flushes and closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
