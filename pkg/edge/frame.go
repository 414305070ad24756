package edge

// Framing keys. KeyInit and KeyDone are control markers and are never
// delivered to consumers; every payload is sent under KeyData.
const (
	KeyData = "NULL"
	KeyInit = "<INIT>"
	KeyDone = "<DONE>"
)

// IsControl reports whether key is one of the reserved control markers.
func IsControl(key string) bool {
	return key == KeyInit || key == KeyDone
}

// UniqueIDs returns ids without duplicates, keeping the first occurrence.
// A Connection may list the same Out port twice; its stream must still be
// read once.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
