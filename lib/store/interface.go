package store

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface of the key–value mapping served by the sKV server.
// Keys and values are plain strings. All methods must be safe for concurrent use.
type IStore interface {
	// Put inserts or updates a key–value pair and returns the previous value.
	// The boolean return value indicates whether a previous value existed.
	Put(key, value string) (old string, loaded bool)
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value string, loaded bool)
	// Remove deletes a key–value pair and returns the removed value.
	Remove(key string) (old string, loaded bool)
	// Size returns the number of stored keys.
	Size() int
	// Clear removes all key–value pairs and returns how many were removed.
	Clear() (removed int)
}
