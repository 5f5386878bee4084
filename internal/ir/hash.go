package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for digests. The version suffix leaves room for changing
// the algorithm without colliding with digests already in a trace store.
const (
	DomainBlob   = "menukit/blob/v1"
	DomainValues = "menukit/values/v1"
	DomainSchema = "menukit/schema/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// BlobDigest returns a short hex digest of an encoded state blob.
// Trace records store digests rather than blobs so the log stays small and
// two dispatches over the same state are easy to correlate.
func BlobDigest(blob string) string {
	return hex.EncodeToString(hashWithDomain(DomainBlob, []byte(blob))[:8])
}

// ValuesDigest returns a hex digest of a decoded state vector, computed over
// its canonical JSON form.
func ValuesDigest(values []Value) (string, error) {
	canonical, err := MarshalCanonical(Array(values))
	if err != nil {
		return "", fmt.Errorf("ValuesDigest: failed to marshal: %w", err)
	}
	return hex.EncodeToString(hashWithDomain(DomainValues, canonical)), nil
}

// SchemaFingerprint returns one byte identifying an ordered list of type
// descriptors. It is embedded in every state blob header so an identifier
// produced under a different slot layout is rejected instead of misread.
func SchemaFingerprint(typeNames []string) byte {
	h := sha256.New()
	h.Write([]byte(DomainSchema))
	h.Write([]byte{0x00})
	for _, name := range typeNames {
		h.Write([]byte(name))
		h.Write([]byte{0x00})
	}
	return h.Sum(nil)[0]
}
