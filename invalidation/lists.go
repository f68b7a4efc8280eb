package invalidation

import "strings"

// Lists is the result of index lookups: sets to schedule on descendants and
// on siblings of the changed element.
type Lists struct {
	Descendants []*Set
	Siblings    []*Set
}

// IsEmpty reports lists without any set.
func (l *Lists) IsEmpty() bool {
	return len(l.Descendants) == 0 && len(l.Siblings) == 0
}

// Reset empties lists keeping allocated storage.
func (l *Lists) Reset() {
	l.Descendants = l.Descendants[:0]
	l.Siblings = l.Siblings[:0]
}

func (l *Lists) String() string {
	var sb strings.Builder
	sb.WriteString("descendants:")
	for _, s := range l.Descendants {
		sb.WriteString(" " + s.String())
	}
	sb.WriteString(" siblings:")
	for _, s := range l.Siblings {
		sb.WriteString(" " + s.String())
	}
	return sb.String()
}
