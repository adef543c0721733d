package fat32

import (
	"encoding/binary"
	"strings"
)

// Attributes mirrors the FAT attribute bitmap at byte 11 of a directory
// record, decoded into named booleans instead of a raw byte.
type Attributes struct {
	ReadOnly  bool
	Hidden    bool
	System    bool
	VolumeID  bool
	Directory bool
	Archive   bool
}

func decodeAttributes(b byte) Attributes {
	return Attributes{
		ReadOnly:  b&attrReadOnly != 0,
		Hidden:    b&attrHidden != 0,
		System:    b&attrSystem != 0,
		VolumeID:  b&attrVolumeID != 0,
		Directory: b&attrDir != 0,
		Archive:   b&attrArchive != 0,
	}
}

// DirEntry is a decoded short-name (8.3) directory record. LFN entries are
// never recognized; this engine only understands short names.
type DirEntry struct {
	Name         string
	Attrs        Attributes
	FirstCluster uint32
	Size         uint32
}

// IsDir reports whether the entry is a directory.
func (e DirEntry) IsDir() bool { return e.Attrs.Directory }

// IsFile reports whether the entry is a regular file. Always the
// complement of IsDir for a decoded entry.
func (e DirEntry) IsFile() bool { return !e.Attrs.Directory }

// decodeDirEntry parses one 32-byte directory record. It returns ok=false
// for free (0x00), deleted (0xE5), or volume-label entries — none of
// those are surfaced to callers.
func decodeDirEntry(rec []byte) (DirEntry, bool) {
	if len(rec) < dirEntrySize {
		return DirEntry{}, false
	}
	if rec[0] == dirFreeMarker || rec[0] == dirDeletedMarker {
		return DirEntry{}, false
	}
	attrs := decodeAttributes(rec[dirAttrOff])
	if attrs.VolumeID {
		return DirEntry{}, false
	}

	name := trimTrailingSpaces(rec[dirNameOff : dirNameOff+dirNameLen])
	ext := trimTrailingSpaces(rec[dirExtOff : dirExtOff+dirExtLen])
	full := name
	if ext != "" {
		full = name + "." + ext
	}

	hi := uint32(binary.LittleEndian.Uint16(rec[dirFstClusHIOff:]))
	lo := uint32(binary.LittleEndian.Uint16(rec[dirFstClusLOOff:]))
	firstCluster := hi<<16 | lo
	size := binary.LittleEndian.Uint32(rec[dirFileSizeOff:])

	return DirEntry{
		Name:         full,
		Attrs:        attrs,
		FirstCluster: firstCluster,
		Size:         size,
	}, true
}

func trimTrailingSpaces(b []byte) string {
	return strings.TrimRight(string(b), " ")
}

// encodeShortName splits name at the last '.' and encodes it into the
// space-padded 8.3 on-disk form. The base must be 1..=8 ASCII bytes with
// no embedded dot or slash, the extension 0..=3 ASCII bytes under the
// same rules.
func encodeShortName(name string) (nameRaw [dirNameLen]byte, extRaw [dirExtLen]byte, err Error) {
	base, ext := name, ""
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		base, ext = name[:dot], name[dot+1:]
	}
	if base == "" || len(base) > dirNameLen || len(ext) > dirExtLen {
		return nameRaw, extRaw, InvalidName
	}
	if strings.ContainsRune(base, '.') || strings.ContainsRune(ext, '.') {
		return nameRaw, extRaw, InvalidName
	}

	for i := range nameRaw {
		nameRaw[i] = ' '
	}
	for i := range extRaw {
		extRaw[i] = ' '
	}
	for i := 0; i < len(base); i++ {
		c := base[i]
		if c >= 0x80 || c == '/' {
			return nameRaw, extRaw, InvalidName
		}
		nameRaw[i] = upperASCII(c)
	}
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 0x80 || c == '/' {
			return nameRaw, extRaw, InvalidName
		}
		extRaw[i] = upperASCII(c)
	}
	return nameRaw, extRaw, errOK
}

func upperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
