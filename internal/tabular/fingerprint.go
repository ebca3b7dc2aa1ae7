package tabular

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest over the table's column
// names and cell contents. Two tables with identical shape and values
// produce the same fingerprint, so it serves as a content-addressed
// cache key for derived computations.
func Fingerprint(t *Table) string {
	h, _ := blake2b.New256(nil)

	var scratch [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(s)))
		h.Write(scratch[:])
		h.Write([]byte(s))
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(t.NumColumns()))
	h.Write(scratch[:])
	for _, name := range t.names {
		writeString(name)
		for _, v := range t.columns[name] {
			switch x := v.(type) {
			case nil:
				h.Write([]byte{0})
			case string:
				h.Write([]byte{1})
				writeString(x)
			case float64:
				h.Write([]byte{2})
				writeString(ValueString(x))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
