package counter

import (
	"crypto/sha256"
	"encoding/hex"
)

// VisitorIDLength is the length of every id returned by VisitorID.
const VisitorIDLength = 32

// VisitorID derives an opaque visitor token from the caller's address and
// client string (normally the User-Agent). It is not a credential: both
// inputs are caller-controlled and distinct visitors may collide.
func VisitorID(addr, clientID string) string {
	h := sha256.New()
	h.Write([]byte(addr))
	h.Write([]byte{0})
	h.Write([]byte(clientID))
	return hex.EncodeToString(h.Sum(nil))[:VisitorIDLength]
}
