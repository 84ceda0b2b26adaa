package driver

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"multrait/internal/rules"
	"multrait/internal/types"
)

// Digest — фиксированный 256-битный хеш (совместим с source.File.Hash).
type Digest [32]byte

// HashBytes хеширует произвольный срез байт.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine строит составной хеш: H(content || part1 || part2 ...).
// Порядок частей должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint digests the assembled resolution environment: every rule
// of the frozen table plus every declared extern signature, rendered as
// canonical labels. Any change to the table or the manifest yields a new
// fingerprint and therefore a cold cache.
func Fingerprint(session *Session) Digest {
	h := sha256.New()
	for _, rule := range session.Registry.Rules() {
		writeRule(h, session.Types, rule)
	}
	for _, id := range session.Types.Externs() {
		name := types.Label(session.Types, id)
		for _, sig := range session.Types.ExternSigs(id) {
			fmt.Fprintf(h, "sig %s * %s -> %s commutative=%t\n",
				name,
				types.Label(session.Types, sig.Rhs),
				types.Label(session.Types, sig.Result),
				sig.Commutative)
		}
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func writeRule(h hash.Hash, typesIn *types.Interner, rule rules.Rule) {
	fmt.Fprintf(h, "rule %s %s", rule.Rank, rule.Name)
	if rule.Rank == rules.RankLiteral {
		fmt.Fprintf(h, " %s * %s -> %s",
			types.Label(typesIn, rule.Left),
			types.Label(typesIn, rule.Right),
			types.Label(typesIn, rule.Result))
	}
	_, _ = h.Write([]byte{'\n'})
}
