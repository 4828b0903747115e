package prog

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint returns a stable (not necessarily cryptographically strong)
// hash of the program's wire bytes, used as its corpus filename. Matching
// syzkaller's own pkg/hash convention, this is a plain sha1 hex digest
// rather than anything security-sensitive.
func (p *Prog) Fingerprint() string {
	sum := sha1.Sum(p.ToExecBytes())
	return hex.EncodeToString(sum[:])
}
