package fat32

import "strings"

// normalizeName upper-cases a path component for case-insensitive short
// name comparison.
func normalizeName(s string) string {
	return strings.ToUpper(s)
}

// splitComponents splits an absolute path on '/', discarding empty
// components produced by leading/repeated/trailing slashes.
func splitComponents(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitParent splits "/A/B/C.TXT" into ("/A/B", "C.TXT"). path must be
// absolute and not equal to "/".
func splitParent(path string) (parent, name string, err Error) {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" || trimmed == "/" {
		return "", "", Other
	}
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return "", "", Other
	}
	parent = trimmed[:idx]
	if parent == "" {
		parent = "/"
	}
	name = trimmed[idx+1:]
	if name == "" {
		return "", "", Other
	}
	return parent, name, errOK
}
