package pathmatch

import (
	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

// Match reports whether any occupied entry of the table is a byte-prefix
// of probe. An entry matches when its effective length (bytes before the
// first NUL, bounded by the fixed width) is non-zero and every one of
// those bytes equals the corresponding probe byte. Empty entries never
// match. First match wins; the scan is bounded by the table capacity and
// performs no allocation.
func Match(t *tables.Table[uint32, types.PathEntry], probe []byte) bool {
	matched := false
	t.ForEach(func(_ uint32, entry types.PathEntry) bool {
		n := entry.Len()
		if n == 0 || n > len(probe) {
			return true
		}
		for i := 0; i < n; i++ {
			if entry[i] != probe[i] {
				return true
			}
		}
		matched = true
		return false
	})
	return matched
}
