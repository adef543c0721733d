package fat32

import "encoding/binary"

// bpbParams holds the handful of BPB fields needed to compute volume
// geometry. It is parsed once at view construction and never mutated.
type bpbParams struct {
	bytesPerSector  uint16
	sectorsPerClus  uint8
	reservedSectors uint16
	numFATs         uint8
	sectorsPerFAT   uint32
	rootCluster     uint32
}

// parseBPB reads sector 0 of disk and extracts the FAT32 BPB fields.
// No signature or extended-BPB validation is performed, matching the
// teacher's minimal parse: only the fields the engine actually needs.
func parseBPB(disk []byte) (bpbParams, Error) {
	if len(disk) < minBPBBufLen {
		return bpbParams{}, BufferTooSmall
	}
	b := disk[:minBPBBufLen]

	p := bpbParams{
		bytesPerSector:  binary.LittleEndian.Uint16(b[bpbBytsPerSec:]),
		sectorsPerClus:  b[bpbSecPerClus],
		reservedSectors: binary.LittleEndian.Uint16(b[bpbRsvdSecCnt:]),
		numFATs:         b[bpbNumFATs],
		sectorsPerFAT:   binary.LittleEndian.Uint32(b[bpbFATSz32:]),
		rootCluster:     binary.LittleEndian.Uint32(b[bpbRootClus32:]),
	}

	if p.bytesPerSector == 0 || p.sectorsPerClus == 0 || p.numFATs == 0 || p.sectorsPerFAT == 0 {
		return bpbParams{}, NotFat32
	}
	return p, errOK
}

func (p bpbParams) clusterSize() int {
	return int(p.bytesPerSector) * int(p.sectorsPerClus)
}

func (p bpbParams) fatStart() int {
	return int(p.reservedSectors) * int(p.bytesPerSector)
}

func (p bpbParams) fatBytes() int {
	return int(p.sectorsPerFAT) * int(p.bytesPerSector)
}

func (p bpbParams) dataStart() int {
	return p.fatStart() + int(p.numFATs)*p.fatBytes()
}

// clusterOffset returns the byte offset of cluster n in disk, valid for
// n >= 2. Callers must still bounds-check against the buffer length.
func (p bpbParams) clusterOffset(n uint32) int {
	return p.dataStart() + int(n-2)*p.clusterSize()
}
