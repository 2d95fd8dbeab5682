package sig

import (
	"hash/crc32"
	"hash/fnv"
)

// FNV1a is the 32-bit FNV-1a digest of every byte, wildcards included at
// their literal value.
func (p Pattern) FNV1a() uint32 {
	h := fnv.New32a()
	h.Write(p.Bytes)
	return h.Sum32()
}

// CRC32 is the reflected IEEE CRC-32 (polynomial 0xEDB88320) of every byte,
// wildcards included at their literal value.
func (p Pattern) CRC32() uint32 {
	return crc32.ChecksumIEEE(p.Bytes)
}
