// Package mask provides operations to extract and insert ranges of bits
// within a byte.
//
// Bit positions are 0-indexed from the least significant bit, matching the
// field diagrams in the 8080 programmer's manual (e.g. MOV is 01 ddd sss,
// with sss in bits 0-2 and ddd in bits 3-5).

package mask

func checkBitRange(lo, hi int) {
	if lo > hi || lo < 0 || hi > 7 {
		panic("invalid bit range -- need 0 <= lo <= hi <= 7")
	}
}

// Bits extracts the inclusive range of bits [lo:hi] from b, shifted down so
// the lowest extracted bit lands at position 0.
func Bits(b byte, lo, hi int) byte {
	checkBitRange(lo, hi)
	width := hi - lo + 1
	return (b >> lo) & ((1 << width) - 1)
}

// Insert returns b with bits OR-ed in starting at position lo.
func Insert(b byte, bits byte, lo int) byte {
	return b | (bits << lo)
}

// EqMasked reports whether b matches expected under mask, i.e. whether every
// bit the mask selects agrees.
func EqMasked(b, expected, mask byte) bool {
	return b&mask == expected&mask
}
