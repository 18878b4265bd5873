// Package machine implements the 8080 virtual machine: a 64 KiB memory
// image, the programmer-visible registers and condition flags, and a
// deterministic one-instruction-per-cycle executor with a halt-on-fault
// taxonomy.

package machine

import "otto/inst"

const MemorySize = 1 << 16

// Memory is the flat 64 KiB image the machine owns. 8-bit accesses can reach
// every address; 16-bit accesses that would straddle the final byte fail
// rather than wrap.
type Memory [MemorySize]byte

func (m *Memory) Read8(addr inst.Address) inst.Data8 {
	return m[addr]
}

// Read16 reads the little-endian word at addr. ok is false when addr is the
// final byte of memory.
func (m *Memory) Read16(addr inst.Address) (inst.Data16, bool) {
	if addr == MemorySize-1 {
		return inst.Data16{}, false
	}
	return inst.Data16{Low: m[addr], High: m[addr+1]}, true
}

func (m *Memory) Write8(addr inst.Address, value inst.Data8) {
	m[addr] = value
}

// Write16 writes the little-endian word at addr. ok is false when addr is
// the final byte of memory; nothing is written in that case.
func (m *Memory) Write16(addr inst.Address, value inst.Data16) bool {
	if addr == MemorySize-1 {
		return false
	}
	m[addr] = value.Low
	m[addr+1] = value.High
	return true
}

// WriteSlice copies data into memory starting at addr. ok is false when the
// slice would extend past the end of memory; nothing is written then.
func (m *Memory) WriteSlice(addr inst.Address, data []byte) bool {
	if int(addr)+len(data) > MemorySize {
		return false
	}
	copy(m[addr:], data)
	return true
}
