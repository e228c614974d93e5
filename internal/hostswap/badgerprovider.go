package hostswap

import (
	"encoding/binary"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ashgrove/zcache/internal/unsafehelpers"
)

// BadgerProvider backs resumed writeback with an embedded Badger database,
// standing in for the real swap device. Demo use only — the core engine
// depends only on the Provider interface and never constructs a
// BadgerProvider.
type BadgerProvider struct {
	db       *badger.DB
	pageSize int

	mu       sync.Mutex
	inflight map[string]*Page
}

// NewBadgerProvider opens (or creates) a Badger database at dir to serve as
// the durable writeback target.
func NewBadgerProvider(dir string, pageSize int) (*BadgerProvider, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerProvider{db: db, pageSize: pageSize, inflight: make(map[string]*Page)}, nil
}

// Close releases the underlying Badger database.
func (b *BadgerProvider) Close() error { return b.db.Close() }

func pageDBKey(swapType uint8, offset uint64) []byte {
	key := make([]byte, 9)
	key[0] = swapType
	binary.BigEndian.PutUint64(key[1:], offset)
	return key
}

func (b *BadgerProvider) AllocatePage(swapType uint8, offset uint64) (PageOutcome, *Page) {
	dbKey := pageDBKey(swapType, offset)
	keyStr := unsafehelpers.BytesToString(dbKey)

	b.mu.Lock()
	if _, ok := b.inflight[keyStr]; ok {
		b.mu.Unlock()
		return PageAlreadyPresent, nil
	}
	b.mu.Unlock()

	var alreadyOnDevice bool
	_ = b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(dbKey)
		alreadyOnDevice = err == nil
		return nil
	})
	if alreadyOnDevice {
		return PageAlreadyPresent, nil
	}

	page := &Page{Data: make([]byte, b.pageSize)}
	b.mu.Lock()
	b.inflight[string(dbKey)] = page
	b.mu.Unlock()
	return PageNewLocked, page
}

func (b *BadgerProvider) SubmitWritepage(swapType uint8, offset uint64, page *Page, onComplete func(success bool)) {
	dbKey := pageDBKey(swapType, offset)
	go func() {
		err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Set(dbKey, page.Data)
		})
		b.mu.Lock()
		delete(b.inflight, string(dbKey))
		b.mu.Unlock()
		onComplete(err == nil)
	}()
}

// IsOnDevice reports whether offset has been durably written to Badger.
func (b *BadgerProvider) IsOnDevice(swapType uint8, offset uint64) bool {
	var found bool
	_ = b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(pageDBKey(swapType, offset))
		found = err == nil
		return nil
	})
	return found
}

// KeyCount returns the number of pages currently durable on the underlying
// Badger database. Diagnostic only — the engine itself never counts keys.
func (b *BadgerProvider) KeyCount() uint64 {
	var n uint64
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
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
