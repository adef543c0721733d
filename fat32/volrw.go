package fat32

import (
	"bytes"
	"encoding/binary"
	"log/slog"
)

// VolRW is a mutable view over a FAT32 volume image. It excludes all other
// views over the same buffer for the caller's lifetime: Go has no borrow
// checker to enforce that statically, so it is the caller's responsibility
// not to construct a second VolRO/VolRW over the same bytes while this one
// is in use.
type VolRW struct {
	VolRO
}

// NewVolRW parses disk's BPB and returns a mutable view over it. disk is
// borrowed, not copied: writes go directly into the caller's buffer.
func NewVolRW(disk []byte) (*VolRW, error) {
	p, fe := parseBPB(disk)
	if fe != errOK {
		return nil, fe
	}
	return &VolRW{VolRO: VolRO{disk: disk, bpb: p, log: slog.Default()}}, nil
}

// AsReadOnly returns a read-only view sharing the same underlying buffer,
// so callers can reuse VolRO's traversal logic without duplicating it.
func (v *VolRW) AsReadOnly() *VolRO {
	return &v.VolRO
}

// WriteFileByPath creates or overwrites the file at path with content.
//
// Order of operations, per spec.md §4.6/§4.7: validate the path, look up
// any existing entry, release its old cluster chain (if present), allocate
// a fresh chain sized to content, write the data, then create or update
// the directory slot. The old chain is released *before* the new one is
// allocated — if allocation then fails with NoSpaceLeft, the directory
// still references clusters that are now marked free. spec.md §9 flags
// this as an open question and permits reordering to improve atomicity;
// this implementation keeps the original ordering deliberately (see
// DESIGN.md) and documents the tradeoff here rather than changing it.
func (v *VolRW) WriteFileByPath(path string, content []byte) error {
	if len(path) == 0 || path[0] != '/' || path == "/" {
		return Other
	}
	parent, fname, fe := splitParent(path)
	if fe != errOK {
		return fe
	}
	nameRaw, extRaw, fe := encodeShortName(fname)
	if fe != errOK {
		return fe
	}

	parentCluster := v.bpb.rootCluster
	if parent != "/" {
		entry, err := v.OpenPath(parent)
		if err != nil {
			return err
		}
		if entry == nil {
			return PathNotFound
		}
		if !entry.IsDir() {
			return NotADirectory
		}
		parentCluster = entry.FirstCluster
	}

	existingOff, existingEntry, err := v.findDirEntryOffset(parentCluster, nameRaw, extRaw)
	if err != nil {
		return err
	}

	if existingEntry != nil {
		if existingEntry.IsDir() {
			return NotAFile
		}
		if existingEntry.FirstCluster >= 2 {
			if fe := v.freeChain(existingEntry.FirstCluster); fe != errOK {
				return fe
			}
		}
	}

	var firstCluster uint32
	if len(content) > 0 {
		needed := (len(content) + v.bpb.clusterSize() - 1) / v.bpb.clusterSize()
		chain, fe := v.allocChain(needed)
		if fe != errOK {
			return fe
		}
		if fe := v.writeChainData(chain, content); fe != errOK {
			return fe
		}
		firstCluster = chain[0]
	}

	size := uint32(len(content))
	if existingOff >= 0 {
		if fe := v.writeDirEntryAt(existingOff, nameRaw, extRaw, firstCluster, size); fe != errOK {
			return fe
		}
		return nil
	}

	freeOff, wasTerminator, clusterEnd, fe := v.findFreeDirEntrySlot(parentCluster)
	if fe != errOK {
		return fe
	}
	if fe := v.writeDirEntryAt(freeOff, nameRaw, extRaw, firstCluster, size); fe != errOK {
		return fe
	}
	if wasTerminator {
		next := freeOff + dirEntrySize
		if next < clusterEnd {
			v.disk[next] = dirFreeMarker
		}
	}
	v.trace("write_file_by_path", "path", path, "size", size)
	return nil
}

// ---- internals (write path) ----

func (v *VolRW) fatBytes() int { return v.bpb.fatBytes() }

// maxClusterNumber is the last cluster number usable on this volume,
// bounded both by the size of the data area and by the number of entries
// the FAT itself can address.
func (v *VolRW) maxClusterNumber() (uint32, Error) {
	dataStart := v.bpb.dataStart()
	if dataStart >= len(v.disk) {
		return 0, OutOfBounds
	}
	cs := v.bpb.clusterSize()
	if cs == 0 {
		return 0, NotFat32
	}
	dataClusters := uint32((len(v.disk) - dataStart) / cs)
	if dataClusters == 0 {
		return 0, NotFat32
	}
	lastByData := 2 + dataClusters - 1

	fatEntries := uint32(v.fatBytes() / int(fatEntrySize))
	if fatEntries < 3 {
		return 0, NotFat32
	}
	lastByFAT := fatEntries - 1

	if lastByData < lastByFAT {
		return lastByData, errOK
	}
	return lastByFAT, errOK
}

// writeFATEntryAll writes value into cluster's FAT entry in every FAT
// copy, per spec.md's F7 multi-FAT-mirror requirement.
func (v *VolRW) writeFATEntryAll(cluster uint32, value uint32) Error {
	val := value & fatEntryMask
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)

	fat0 := v.bpb.fatStart()
	fatLen := v.fatBytes()
	for i := 0; i < int(v.bpb.numFATs); i++ {
		base := fat0 + i*fatLen
		off := base + int(cluster)*int(fatEntrySize)
		if off+int(fatEntrySize) > len(v.disk) {
			return OutOfBounds
		}
		copy(v.disk[off:off+4], buf[:])
	}
	return errOK
}

func (v *VolRW) freeChain(start uint32) Error {
	if start < 2 {
		return errOK
	}
	chain, fe := v.followChain(start)
	if fe != errOK {
		return fe
	}
	for _, cl := range chain {
		if fe := v.writeFATEntryAll(cl, 0); fe != errOK {
			return fe
		}
	}
	return errOK
}

// allocChain finds `needed` free clusters (FAT entry == 0) by linear scan
// and chains them in allocation order, terminating the last with EOC.
func (v *VolRW) allocChain(needed int) ([]uint32, Error) {
	if needed == 0 {
		return nil, errOK
	}
	maxCl, fe := v.maxClusterNumber()
	if fe != errOK {
		return nil, fe
	}

	found := make([]uint32, 0, needed)
	for cl := uint32(2); cl <= maxCl; cl++ {
		val, fe := v.readFATEntry(cl)
		if fe != errOK {
			return nil, fe
		}
		if val == 0 {
			found = append(found, cl)
			if len(found) == needed {
				break
			}
		}
	}
	if len(found) != needed {
		return nil, NoSpaceLeft
	}

	for i := range found {
		next := fatEOCWrite
		if i+1 < len(found) {
			next = found[i+1]
		}
		if fe := v.writeFATEntryAll(found[i], next); fe != errOK {
			return nil, fe
		}
	}
	return found, errOK
}

// writeChainData copies content into chain's clusters, zero-filling the
// tail of each cluster beyond what content supplies.
func (v *VolRW) writeChainData(chain []uint32, content []byte) Error {
	cs := v.bpb.clusterSize()
	pos := 0
	for _, cl := range chain {
		off, fe := v.clusterToOffset(cl)
		if fe != errOK {
			return fe
		}
		if off+cs > len(v.disk) {
			return OutOfBounds
		}
		end := pos + cs
		if end > len(content) {
			end = len(content)
		}
		chunk := content[pos:end]
		copy(v.disk[off:off+len(chunk)], chunk)
		for i := off + len(chunk); i < off+cs; i++ {
			v.disk[i] = 0
		}
		pos = end
		if pos >= len(content) {
			break
		}
	}
	return errOK
}

// findDirEntryOffset scans parentCluster's chain for a 32-byte slot whose
// name+ext bytes match exactly. Scanning stops globally at the first
// terminator; deleted slots are skipped.
func (v *VolRW) findDirEntryOffset(parentCluster uint32, nameRaw [dirNameLen]byte, extRaw [dirExtLen]byte) (int, *DirEntry, error) {
	cs := v.bpb.clusterSize()
	chain, fe := v.followChain(parentCluster)
	if fe != errOK {
		return -1, nil, fe
	}
	for _, cl := range chain {
		off, fe := v.clusterToOffset(cl)
		if fe != errOK {
			return -1, nil, fe
		}
		if off+cs > len(v.disk) {
			return -1, nil, OutOfBounds
		}
		data := v.disk[off : off+cs]
		for i := 0; i+dirEntrySize <= len(data); i += dirEntrySize {
			rec := data[i : i+dirEntrySize]
			if rec[0] == dirFreeMarker {
				return -1, nil, nil
			}
			if rec[0] == dirDeletedMarker {
				continue
			}
			if bytes.Equal(rec[dirNameOff:dirNameOff+dirNameLen], nameRaw[:]) &&
				bytes.Equal(rec[dirExtOff:dirExtOff+dirExtLen], extRaw[:]) {
				entry, _ := decodeDirEntry(rec)
				return off + i, &entry, nil
			}
		}
	}
	return -1, nil, nil
}

// findFreeDirEntrySlot finds the first reusable slot (terminator or
// deleted entry) in parentCluster's chain. It never extends the chain
// with a fresh cluster: a full directory returns NoSpaceLeft, per
// spec.md §4.6/§9's documented V1 limitation.
func (v *VolRW) findFreeDirEntrySlot(parentCluster uint32) (off int, wasTerminator bool, clusterEnd int, err Error) {
	cs := v.bpb.clusterSize()
	chain, fe := v.followChain(parentCluster)
	if fe != errOK {
		return 0, false, 0, fe
	}
	for _, cl := range chain {
		base, fe := v.clusterToOffset(cl)
		if fe != errOK {
			return 0, false, 0, fe
		}
		end := base + cs
		if end > len(v.disk) {
			return 0, false, 0, OutOfBounds
		}
		data := v.disk[base:end]
		for i := 0; i+dirEntrySize <= len(data); i += dirEntrySize {
			b0 := data[i]
			if b0 == dirFreeMarker {
				return base + i, true, end, errOK
			}
			if b0 == dirDeletedMarker {
				return base + i, false, end, errOK
			}
		}
	}
	return 0, false, 0, NoSpaceLeft
}

func (v *VolRW) writeDirEntryAt(offset int, nameRaw [dirNameLen]byte, extRaw [dirExtLen]byte, firstCluster uint32, size uint32) Error {
	if offset+dirEntrySize > len(v.disk) {
		return OutOfBounds
	}
	rec := v.disk[offset : offset+dirEntrySize]

	copy(rec[dirNameOff:dirNameOff+dirNameLen], nameRaw[:])
	copy(rec[dirExtOff:dirExtOff+dirExtLen], extRaw[:])
	rec[dirAttrOff] = attrArchive

	for i := 12; i < 20; i++ {
		rec[i] = 0
	}

	hi := uint16(firstCluster >> 16)
	lo := uint16(firstCluster & 0xFFFF)
	binary.LittleEndian.PutUint16(rec[dirFstClusHIOff:], hi)
	for i := 22; i < 26; i++ {
		rec[i] = 0
	}
	binary.LittleEndian.PutUint16(rec[dirFstClusLOOff:], lo)
	binary.LittleEndian.PutUint32(rec[dirFileSizeOff:], size)
	return errOK
}
