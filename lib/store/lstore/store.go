package lstore

import (
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	data *xsync.MapOf[string, string]
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(key, value string) (string, bool) {
	// LoadAndStore returns the new value if the key was absent
	old, loaded := s.data.LoadAndStore(key, value)
	if !loaded {
		return "", false
	}
	return old, true
}

func (s *storeImpl) Get(key string) (string, bool) {
	return s.data.Load(key)
}

func (s *storeImpl) Remove(key string) (string, bool) {
	return s.data.LoadAndDelete(key)
}

func (s *storeImpl) Size() int {
	return s.data.Size()
}

// Clear removes the keys one by one, so the returned count only includes entries
// removed by this call even if other goroutines write concurrently.
func (s *storeImpl) Clear() int {
	removed := 0
	s.data.Range(func(key string, _ string) bool {
		if _, ok := s.data.LoadAndDelete(key); ok {
			removed++
		}
		return true
	})
	Logger.Debugf("Cleared %d entries", removed)
	return removed
}
