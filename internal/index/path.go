package index

import "strings"

// Normalize canonicalizes a path into repo-relative, forward-slash form:
// backslashes become slashes, "." components are dropped, leading and
// interior ".." components are collapsed against the preceding component,
// and a leading slash is dropped. Normalization never fails; a path that
// reduces to nothing yields "".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}
