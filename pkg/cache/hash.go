package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns prefix + ":" + the hex SHA-256 of parts encoded as a
// JSON array. LayoutKeyOpts is a plain struct, so equal options always
// encode to the same bytes.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. The pipeline uses it to identify a
// graph by its canonical JSON; the server reports it as X-Graph-Hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
