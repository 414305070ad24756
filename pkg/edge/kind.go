package edge

import "fmt"

// Kind identifies an edge implementation family.
type Kind int

const (
	KindMemory Kind = iota + 1
	KindStream
	KindCooperativeStream
)

var kindNames = map[Kind]string{
	KindMemory:            "memory",
	KindStream:            "stream",
	KindCooperativeStream: "cooperative-stream",
}

// refines declares the direct parent of each kind. Kinds absent from the table
// are roots.
var refines = map[Kind]Kind{
	KindCooperativeStream: KindStream,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// Chain returns k followed by every kind it refines, most specific first.
func (k Kind) Chain() []Kind {
	chain := []Kind{k}
	for parent, ok := refines[k]; ok; parent, ok = refines[parent] {
		chain = append(chain, parent)
	}
	return chain
}

// Refines reports whether k is ref or a refinement of ref.
func (k Kind) Refines(ref Kind) bool {
	for _, c := range k.Chain() {
		if c == ref {
			return true
		}
	}
	return false
}

// Portable reports whether edges of this kind can be read from another OS process.
func (k Kind) Portable() bool {
	return k.Refines(KindStream)
}

// Reference returns the least specialized kind among kinds: the one with the
// shortest chain. Ties keep the first kind seen.
func Reference(kinds ...Kind) (Kind, bool) {
	if len(kinds) == 0 {
		return 0, false
	}
	ref := kinds[0]
	for _, k := range kinds[1:] {
		if len(k.Chain()) < len(ref.Chain()) {
			ref = k
		}
	}
	return ref, true
}
