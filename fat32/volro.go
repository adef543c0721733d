package fat32

import (
	"encoding/binary"
	"log/slog"
)

// VolRO is an immutable, read-only view over a FAT32 volume image. Multiple
// VolRO instances may coexist over the same buffer.
type VolRO struct {
	disk []byte
	bpb  bpbParams
	log  *slog.Logger
}

// NewVolRO parses disk's BPB and returns a read-only view over it. disk is
// borrowed, never copied; the caller must keep it alive and unmodified for
// the lifetime of the returned view if it wants stable reads.
func NewVolRO(disk []byte) (*VolRO, error) {
	p, fe := parseBPB(disk)
	if fe != errOK {
		return nil, fe
	}
	return &VolRO{disk: disk, bpb: p, log: slog.Default()}, nil
}

// SetLogger overrides the trace logger (nil restores slog.Default()).
func (v *VolRO) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	v.log = log
}

func (v *VolRO) trace(op string, args ...any) {
	v.log.Debug(op, args...)
}

// ListRoot lists the volume's root directory.
func (v *VolRO) ListRoot() ([]DirEntry, error) {
	return v.listDirCluster(v.bpb.rootCluster)
}

// ListDirPath lists the directory named by path ("/" lists the root).
// Returns NotADirectory if path resolves to a file.
func (v *VolRO) ListDirPath(path string) ([]DirEntry, error) {
	if path == "/" {
		return v.ListRoot()
	}
	entry, fe := v.OpenPath(path)
	if fe != nil {
		return nil, fe
	}
	if entry == nil {
		return nil, PathNotFound
	}
	if !entry.IsDir() {
		return nil, NotADirectory
	}
	return v.listDirCluster(entry.FirstCluster)
}

// OpenPath resolves an absolute path to a directory entry. It returns
// (nil, nil) if the path does not exist, and Other if path is not
// absolute. "/" resolves to (nil, nil): the root has no entry of its own.
func (v *VolRO) OpenPath(path string) (*DirEntry, error) {
	if len(path) == 0 || path[0] != '/' {
		return nil, Other
	}
	if path == "/" {
		return nil, nil
	}

	current := v.bpb.rootCluster
	var last *DirEntry
	for _, part := range splitComponents(path) {
		target := normalizeName(part)
		entries, fe := v.listDirCluster(current)
		if fe != nil {
			return nil, fe
		}
		found := false
		for i := range entries {
			if normalizeName(entries[i].Name) == target {
				current = entries[i].FirstCluster
				last = &entries[i]
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	}
	v.trace("open_path", "path", path, "found", last != nil)
	return last, nil
}

// ReadFile reads the full contents of entry, following its cluster chain.
// It returns NotAFile if entry is a directory.
func (v *VolRO) ReadFile(entry DirEntry) ([]byte, error) {
	if entry.IsDir() {
		return nil, NotAFile
	}
	if entry.Size == 0 {
		return []byte{}, nil
	}
	if entry.FirstCluster < 2 {
		return nil, InvalidCluster
	}

	remaining := int(entry.Size)
	clusterSize := v.bpb.clusterSize()
	out := make([]byte, 0, remaining)

	chain, fe := v.followChain(entry.FirstCluster)
	if fe != errOK {
		return nil, fe
	}
	for _, cl := range chain {
		data, fe := v.readCluster(cl)
		if fe != errOK {
			return nil, fe
		}
		take := remaining
		if take > clusterSize {
			take = clusterSize
		}
		out = append(out, data[:take]...)
		remaining -= take
		if remaining == 0 {
			break
		}
	}
	v.trace("read_file", "name", entry.Name, "size", entry.Size)
	return out, nil
}

// ReadFileByPath resolves path and reads its contents. It returns
// (nil, nil) if path does not exist, and NotAFile if path is a directory.
func (v *VolRO) ReadFileByPath(path string) ([]byte, error) {
	entry, fe := v.OpenPath(path)
	if fe != nil {
		return nil, fe
	}
	if entry == nil {
		return nil, nil
	}
	if !entry.IsFile() {
		return nil, NotAFile
	}
	return v.ReadFile(*entry)
}

// ---- internals shared with VolRW's read-only conversion ----

func (v *VolRO) readFATEntry(cluster uint32) (uint32, Error) {
	off := v.bpb.fatStart() + int(cluster)*int(fatEntrySize)
	if off+int(fatEntrySize) > len(v.disk) {
		return 0, OutOfBounds
	}
	val := binary.LittleEndian.Uint32(v.disk[off:])
	return val & fatEntryMask, errOK
}

func (v *VolRO) clusterToOffset(cluster uint32) (int, Error) {
	if cluster < 2 {
		return 0, InvalidCluster
	}
	off := v.bpb.clusterOffset(cluster)
	if off >= len(v.disk) {
		return 0, OutOfBounds
	}
	return off, errOK
}

func (v *VolRO) readCluster(cluster uint32) ([]byte, Error) {
	off, fe := v.clusterToOffset(cluster)
	if fe != errOK {
		return nil, fe
	}
	size := v.bpb.clusterSize()
	if off+size > len(v.disk) {
		return nil, OutOfBounds
	}
	return v.disk[off : off+size], errOK
}

// followChain walks the cluster chain starting at c, bounded at
// maxChainClusters entries to guard against circular chains.
func (v *VolRO) followChain(c uint32) ([]uint32, Error) {
	if c < 2 {
		return nil, InvalidCluster
	}
	chain := make([]uint32, 0, 8)
	current := c
	for i := 0; i < maxChainClusters; i++ {
		chain = append(chain, current)
		next, fe := v.readFATEntry(current)
		if fe != errOK {
			return nil, fe
		}
		if next >= fatEOCMin {
			break
		}
		if next < 2 {
			return nil, InvalidCluster
		}
		current = next
	}
	return chain, errOK
}

func (v *VolRO) listDirCluster(start uint32) ([]DirEntry, error) {
	chain, fe := v.followChain(start)
	if fe != errOK {
		return nil, fe
	}
	var entries []DirEntry
	for _, cl := range chain {
		data, fe := v.readCluster(cl)
		if fe != errOK {
			return nil, fe
		}
		terminated := false
		for off := 0; off+dirEntrySize <= len(data); off += dirEntrySize {
			rec := data[off : off+dirEntrySize]
			if rec[0] == dirFreeMarker {
				terminated = true
				break
			}
			if e, ok := decodeDirEntry(rec); ok {
				entries = append(entries, e)
			}
		}
		if terminated {
			break
		}
	}
	v.trace("list_dir_cluster", "start_cluster", start, "count", len(entries))
	return entries, nil
}
