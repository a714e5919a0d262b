package cpu

import (
	"slices"
)

// Memory is the flat, self-modifying program and data store of a machine.
type Memory []int64

// Clone returns an independent copy of the memory image.
func (mem Memory) Clone() Memory {
	return slices.Clone(mem)
}

// Valid returns true if the address lies within the memory.
func (mem Memory) Valid(addr int64) bool {
	return addr >= 0 && addr < int64(len(mem))
}

// Load reads the cell at an address.
func (mem Memory) Load(addr int64) (value int64, err error) {
	if !mem.Valid(addr) {
		err = &ErrAddressRange{Address: addr, Size: len(mem)}
		return
	}

	value = mem[addr]
	return
}

// Store writes the cell at an address.
func (mem Memory) Store(addr int64, value int64) (err error) {
	if !mem.Valid(addr) {
		err = &ErrAddressRange{Address: addr, Size: len(mem)}
		return
	}

	mem[addr] = value
	return
}
