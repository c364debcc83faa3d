package temporal

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a content hash over an entity's payload fields, used to
// detect whether an incoming write actually changes anything.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Field tags inside the hashed stream. Tagging null separately from any
// value keeps a null field from colliding with an empty or coincidentally
// identical string.
const (
	fieldNull    byte = 0x00
	fieldPresent byte = 0x01
)

// FingerprintFields hashes a fixed-order field sequence with BLAKE2b-256.
// Each present field contributes a tag, a varint length, and its bytes, so
// differing field boundaries can never produce the same stream:
// ("ab","c") and ("a","bc") hash differently.
func FingerprintFields(fields ...pgtype.Text) Fingerprint {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails on invalid key sizes; nil is valid.
		panic(err)
	}

	var lenBuf [binary.MaxVarintLen64]byte
	for _, field := range fields {
		if !field.Valid {
			h.Write([]byte{fieldNull})
			continue
		}
		h.Write([]byte{fieldPresent})
		n := binary.PutUvarint(lenBuf[:], uint64(len(field.String)))
		h.Write(lenBuf[:n])
		h.Write([]byte(field.String))
	}

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}
