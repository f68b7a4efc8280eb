package selector

import "iter"

// List is an arena holding one or more complex selectors. Each complex
// selector is stored right-to-left and ends with selector marked as last in
// complex, the very last selector of the arena is marked as last in list.
type List struct {
	sels []Selector
}

// Ref addresses single simple selector inside a List.
type Ref struct {
	list *List
	idx  int
}

// NewList builds list from complex selectors, each given right-to-left.
// Relations and payloads of the passed selectors are preserved, position
// markers are recomputed.
func NewList(complexes ...[]Selector) *List {
	l := &List{}
	for _, c := range complexes {
		if len(c) == 0 {
			continue
		}
		start := len(l.sels)
		l.sels = append(l.sels, c...)
		for i := start; i < len(l.sels); i++ {
			l.sels[i].lastInComplex = false
			l.sels[i].lastInList = false
		}
		l.sels[len(l.sels)-1].lastInComplex = true
		l.sels[len(l.sels)-1].relation = normalizeLast(l.sels[len(l.sels)-1].relation)
	}
	if len(l.sels) > 0 {
		l.sels[len(l.sels)-1].lastInList = true
	}
	return l
}

// leftmost selector may only carry relative combinator (or none)
func normalizeLast(r Relation) Relation {
	if r.IsRelative() {
		return r
	}
	return RelationSubSelector
}

// EmptyList returns list with no complex selectors, result of forgiving
// parsing where every argument was dropped.
func EmptyList() *List {
	return &List{}
}

// IsEmpty reports whether list has no selectors.
func (l *List) IsEmpty() bool {
	return l == nil || len(l.sels) == 0
}

// Len returns number of simple selectors in the arena.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.sels)
}

// First returns the first simple selector of the first complex selector.
func (l *List) First() Ref {
	if l.IsEmpty() {
		return Ref{}
	}
	return Ref{list: l, idx: 0}
}

// Next returns the start of the complex selector following the one r
// belongs to.
func (l *List) Next(r Ref) Ref {
	if !r.Valid() || r.list != l {
		return Ref{}
	}
	i := r.idx
	for !l.sels[i].lastInComplex {
		i++
	}
	if l.sels[i].lastInList {
		return Ref{}
	}
	return Ref{list: l, idx: i + 1}
}

// Complexes iterates over complex selectors of the list.
func (l *List) Complexes() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for r := l.First(); r.Valid(); r = l.Next(r) {
			if !yield(r) {
				return
			}
		}
	}
}

// ComplexCount returns number of complex selectors.
func (l *List) ComplexCount() int {
	n := 0
	for range l.Complexes() {
		n++
	}
	return n
}

// IsSingleComplexSelector reports list with exactly one complex selector.
func (l *List) IsSingleComplexSelector() bool {
	return l.ComplexCount() == 1
}

// Valid reports whether r points to a selector.
func (r Ref) Valid() bool {
	return r.list != nil && r.idx >= 0 && r.idx < len(r.list.sels)
}

// Selector returns addressed simple selector.
func (r Ref) Selector() *Selector {
	return &r.list.sels[r.idx]
}

// List returns arena r points into.
func (r Ref) List() *List {
	return r.list
}

// Index returns position inside the arena.
func (r Ref) Index() int {
	return r.idx
}

// TagHistory returns next simple selector of the same complex selector,
// crossing compound boundaries.
func (r Ref) TagHistory() Ref {
	if !r.Valid() || r.list.sels[r.idx].lastInComplex {
		return Ref{}
	}
	return Ref{list: r.list, idx: r.idx + 1}
}

// LastInCompound walks to the simple selector ending compound r belongs to.
func (r Ref) LastInCompound() Ref {
	for r.Valid() && !r.Selector().IsLastInCompound() {
		r = r.TagHistory()
	}
	return r
}

// Compound iterates over simple selectors of the compound starting at r.
func (r Ref) Compound() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for cur := r; cur.Valid(); cur = cur.TagHistory() {
			if !yield(cur) {
				return
			}
			if cur.Selector().IsLastInCompound() {
				return
			}
		}
	}
}

// Simples iterates over every simple selector of the complex selector
// starting at r.
func (r Ref) Simples() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for cur := r; cur.Valid(); cur = cur.TagHistory() {
			if !yield(cur) {
				return
			}
		}
	}
}
