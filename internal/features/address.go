package features

import (
	"filippo.io/edwards25519"

	"github.com/mr-tron/base58"
)

// checkAddress reports whether a contract address parses as a 32-byte
// base58 key and, if so, whether it lies on the ed25519 curve. Off-curve
// addresses are program-derived; on-curve ones are regular accounts.
// Addresses that do not parse are passed through untouched (ok=false).
func checkAddress(addr string) (onCurve, ok bool) {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return false, false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil, true
}
