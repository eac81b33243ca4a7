package sim

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Digest fingerprints the complete simulation state. Two runs from the same
// seed produce identical digests at every tick; the determinism harness and
// save integrity checks both key on this.
func (s *Simulation) Digest() string {
	return DigestOf(s.Capture())
}

// DigestOf hashes an already-captured save. Map keys marshal sorted, so the
// encoding is canonical: equal states always hash equal.
func DigestOf(save *SaveStateV1) string {
	raw, err := json.Marshal(save)
	if err != nil {
		// Save rows are plain data; this cannot fail on a valid build.
		panic(fmt.Sprintf("sim: digest: %v", err))
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
