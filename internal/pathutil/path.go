package pathutil

import "strings"

// CollapsePath normalizes a slash separated path textually, without touching the filesystem.
//
// Empty and "." segments are dropped. A ".." keeps its place when it is the very first segment
// or follows another kept "..", otherwise it removes the previously accepted segment. A ".."
// with nothing left to remove is dropped, so "a/../../b" becomes "b".
func CollapsePath(p string) string {
	parts := strings.Split(strings.ReplaceAll(p, `\`, "/"), "/")
	out := make([]string, 0, len(parts))

	for i, part := range parts {
		switch {
		case part == "" || part == ".":
			continue
		case part != "..":
			out = append(out, part)
		case i == 0:
			out = append(out, part)
		case len(out) > 0 && out[len(out)-1] == "..":
			out = append(out, part)
		case len(out) > 0:
			out = out[:len(out)-1]
		}
	}

	return strings.Join(out, "/")
}

// Reroot expresses a root-relative path from a location that reaches the root through base
// (e.g. "../../"). Absolute paths are returned unchanged.
func Reroot(base, p string) string {
	if isAbs(p) {
		return p
	}
	if base == "" {
		return CollapsePath(p)
	}
	return CollapsePath(base + "/" + p)
}

// ToWindows converts separators to backslashes.
func ToWindows(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	// drive letter, e.g. C:/foo
	return len(p) >= 2 && p[1] == ':'
}
