package redis

const (
	// KeyPrefix namespaces every key linkbox writes.
	KeyPrefix = "linkbox:"
)

// Key returns the Redis key for a logical store key.
func Key(name string) string {
	return KeyPrefix + name
}
