package undo

import "crypto/sha256"

// SHA256Hasher is the production Hasher (§6.1): SHA-256 over each
// line's bytes followed by a single NUL terminator. No alternate hash
// is offered — the on-disk format fixes the digest at 32 bytes and a
// stronger or faster hash buys nothing a bit-exact verifier needs.
type SHA256Hasher struct{}

// HashLines implements Hasher.
func (SHA256Hasher) HashLines(lines []string) [32]byte {
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
