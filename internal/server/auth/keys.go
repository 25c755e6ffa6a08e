package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// SigningKey is a single HMAC signing key. ID is a stable fingerprint of the
// secret, carried in the token "kid" header so verification can pick the
// right key without trial and error.
type SigningKey struct {
	ID     string
	Secret []byte
}

// KeySet holds the current signing key plus any previously rotated-out keys.
// Only the current key signs; previous keys remain valid for verification
// until every token signed with them has expired, so a key rotation never
// invalidates live sessions at once.
type KeySet struct {
	Current  SigningKey
	Previous []SigningKey
}

// NewKeySet builds a KeySet from raw secrets. Key IDs are derived from the
// secrets, so every instance of the service computes the same fingerprints.
func NewKeySet(current string, previous ...string) KeySet {
	ks := KeySet{Current: newSigningKey(current)}
	for _, s := range previous {
		ks.Previous = append(ks.Previous, newSigningKey(s))
	}
	return ks
}

func newSigningKey(secret string) SigningKey {
	sum := sha256.Sum256([]byte(secret))
	return SigningKey{ID: hex.EncodeToString(sum[:4]), Secret: []byte(secret)}
}

// lookup returns the secret for the given key ID, checking the current key
// first and then the rotated-out ones.
func (ks KeySet) lookup(kid string) ([]byte, bool) {
	if kid == ks.Current.ID {
		return ks.Current.Secret, true
	}
	for _, k := range ks.Previous {
		if kid == k.ID {
			return k.Secret, true
		}
	}
	return nil, false
}
