package fat32

import "encoding/binary"

// scenarioImage builds the 10-sector, 512-byte-per-sector volume described
// in spec.md §8's concrete scenarios: bytes_per_sector=512,
// sectors_per_cluster=1, reserved=1, num_fats=numFATs, sectors_per_fat=1,
// root_cluster=2. Root contains HELLO.TXT (cluster 3, size 5, "HELLO")
// and DIR (cluster 4, an empty directory).
func scenarioImage(numFATs int) []byte {
	const (
		sectorSize  = 512
		totalSectors = 10
	)
	disk := make([]byte, sectorSize*totalSectors)

	// BPB
	binary.LittleEndian.PutUint16(disk[bpbBytsPerSec:], sectorSize)
	disk[bpbSecPerClus] = 1
	binary.LittleEndian.PutUint16(disk[bpbRsvdSecCnt:], 1)
	disk[bpbNumFATs] = byte(numFATs)
	binary.LittleEndian.PutUint32(disk[bpbFATSz32:], 1)
	binary.LittleEndian.PutUint32(disk[bpbRootClus32:], 2)

	fatStart := sectorSize // reserved(1)*512
	fatBytes := sectorSize // sectorsPerFAT(1)*512
	dataStart := fatStart + numFATs*fatBytes
	clusterSize := sectorSize

	setFATEntry := func(fatIdx int, cluster uint32, value uint32) {
		off := fatStart + fatIdx*fatBytes + int(cluster)*4
		binary.LittleEndian.PutUint32(disk[off:], value)
	}
	for f := 0; f < numFATs; f++ {
		setFATEntry(f, 2, fatEOCWrite)
		setFATEntry(f, 3, fatEOCWrite)
		setFATEntry(f, 4, fatEOCWrite)
	}

	clusterOff := func(n uint32) int {
		return dataStart + int(n-2)*clusterSize
	}

	// Root directory, cluster 2: HELLO.TXT then DIR then terminator.
	root := disk[clusterOff(2):]
	writeRawDirEntry(root[0:32], "HELLO   ", "TXT", attrArchive, 3, 5)
	writeRawDirEntry(root[32:64], "DIR     ", "   ", attrDir, 4, 0)
	// root[64] already 0x00: terminator.

	// HELLO.TXT data, cluster 3.
	copy(disk[clusterOff(3):], "HELLO")

	// DIR, cluster 4: left all-zero (terminator at byte 0).

	return disk
}

func writeRawDirEntry(rec []byte, name, ext string, attr byte, firstCluster uint32, size uint32) {
	copy(rec[dirNameOff:dirNameOff+dirNameLen], name)
	copy(rec[dirExtOff:dirExtOff+dirExtLen], ext)
	rec[dirAttrOff] = attr
	binary.LittleEndian.PutUint16(rec[dirFstClusHIOff:], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(rec[dirFstClusLOOff:], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(rec[dirFileSizeOff:], size)
}

// fatEntryAt reads FAT copy fatIdx's raw (unmasked) entry for cluster,
// for assertions in multi-FAT-mirror tests.
func fatEntryAt(disk []byte, fatIdx int, cluster uint32) uint32 {
	const sectorSize = 512
	fatStart := sectorSize
	fatBytes := sectorSize
	off := fatStart + fatIdx*fatBytes + int(cluster)*4
	return binary.LittleEndian.Uint32(disk[off:]) & fatEntryMask
}
