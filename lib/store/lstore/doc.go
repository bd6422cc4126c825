// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. Data is kept in a puzpuzpuz/xsync MapOf and is not persisted
// between process restarts.
//
// Thread Safety:
//
//	All operations are thread-safe. Put, Get and Remove are atomic per key. Size is a
//	snapshot, Clear removes entries one at a time and counts only the entries it removed.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	old, loaded := s.Put("k1", "v1") // "", false
//	value, ok := s.Get("k1")        // "v1", true
package lstore
