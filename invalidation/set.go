// Package invalidation holds invalidation sets: per feature records of what
// has to be re-checked when presence of that feature changes on an element.
package invalidation

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Type tells descendant sets from sibling sets.
type Type uint8

const (
	Descendants Type = iota
	Siblings
)

func (t Type) String() string {
	if t == Siblings {
		return "siblings"
	}
	return "descendants"
}

// DirectAdjacentMax is the "unbounded" sibling distance, result of "~" or of
// too many consecutive "+" combinators.
const DirectAdjacentMax = math.MaxUint32

type nameSet map[string]struct{}

func (n *nameSet) add(name string) {
	if *n == nil {
		*n = make(nameSet)
	}
	(*n)[name] = struct{}{}
}

func (n nameSet) has(name string) bool {
	_, ok := n[name]
	return ok
}

func (n nameSet) sorted() []string {
	return slices.Sorted(maps.Keys(n))
}

// Set is an invalidation set. Sets are shared between index entries and use
// copy-on-write: callers check HasOneRef before mutating and Copy otherwise.
// Reference counter is not atomic, sets are built by a single goroutine and
// only read afterwards.
type Set struct {
	typ       Type
	refs      int
	singleton bool

	classes nameSet
	ids     nameSet
	tags    nameSet
	attrs   nameSet

	invalidatesSelf        bool
	invalidatesNth         bool
	wholeSubtree           bool
	treeBoundaryCrossing   bool
	insertionPointCrossing bool
	invalidatesSlotted     bool
	invalidatesParts       bool
	customPseudo           bool

	// sibling sets only
	maxDirectAdjacent  uint32
	siblingDescendants *Set
	descendants        *Set
}

var (
	selfInvalidationSet = &Set{typ: Descendants, singleton: true, invalidatesSelf: true}
	partInvalidationSet = &Set{typ: Descendants, singleton: true, invalidatesParts: true, treeBoundaryCrossing: true}
)

// SelfInvalidationSet returns immutable set which only invalidates the
// element itself.
func SelfInvalidationSet() *Set {
	return selfInvalidationSet
}

// PartInvalidationSet returns immutable set which invalidates ::part()
// elements in shadow trees.
func PartInvalidationSet() *Set {
	return partInvalidationSet
}

// NewDescendantSet creates empty descendant set owned by the caller.
func NewDescendantSet() *Set {
	return &Set{typ: Descendants, refs: 1}
}

// NewSiblingSet creates sibling set owned by the caller. When descendants is
// not nil it becomes the set applied to the subtree of matching siblings.
func NewSiblingSet(descendants *Set) *Set {
	return &Set{typ: Siblings, refs: 1, maxDirectAdjacent: 1, descendants: descendants}
}

// Type returns kind of the set.
func (s *Set) Type() Type { return s.typ }

// IsSiblingSet reports sibling sets.
func (s *Set) IsSiblingSet() bool { return s.typ == Siblings }

// IsSelfInvalidationSet reports the shared self invalidation singleton.
func (s *Set) IsSelfInvalidationSet() bool { return s == selfInvalidationSet }

// IsShared reports immutable singletons.
func (s *Set) IsShared() bool { return s.singleton }

// Ref registers one more owner.
func (s *Set) Ref() *Set {
	if !s.singleton {
		s.refs++
	}
	return s
}

// Release drops one owner.
func (s *Set) Release() {
	if !s.singleton && s.refs > 0 {
		s.refs--
	}
}

// HasOneRef reports whether the set has a single owner and may be mutated in
// place. Singletons never have one owner.
func (s *Set) HasOneRef() bool {
	return !s.singleton && s.refs == 1
}

func (s *Set) mustBeMutable() {
	if s.singleton {
		panic("invalidation: attempt to mutate shared singleton set")
	}
}

// InvalidatesSelf reports whether the element owning the changed feature has
// to be restyled.
func (s *Set) InvalidatesSelf() bool { return s.invalidatesSelf }

// SetInvalidatesSelf marks set as self invalidating.
func (s *Set) SetInvalidatesSelf() {
	if s.invalidatesSelf {
		return
	}
	s.mustBeMutable()
	s.invalidatesSelf = true
}

func (s *Set) InvalidatesNth() bool { return s.invalidatesNth }

func (s *Set) SetInvalidatesNth() {
	if s.invalidatesNth {
		return
	}
	s.mustBeMutable()
	s.invalidatesNth = true
}

// WholeSubtreeInvalid reports sets which give up on precise tracking.
func (s *Set) WholeSubtreeInvalid() bool { return s.wholeSubtree }

// SetWholeSubtreeInvalid drops every name and flag which does not matter
// once the whole subtree is invalidated.
func (s *Set) SetWholeSubtreeInvalid() {
	if s.wholeSubtree {
		return
	}
	s.mustBeMutable()
	s.wholeSubtree = true
	s.customPseudo = false
	s.treeBoundaryCrossing = false
	s.insertionPointCrossing = false
	s.invalidatesSlotted = false
	s.invalidatesParts = false
	s.classes, s.ids, s.tags, s.attrs = nil, nil, nil, nil
}

func (s *Set) TreeBoundaryCrossing() bool   { return s.treeBoundaryCrossing }
func (s *Set) InsertionPointCrossing() bool { return s.insertionPointCrossing }
func (s *Set) InvalidatesSlotted() bool     { return s.invalidatesSlotted }
func (s *Set) InvalidatesParts() bool       { return s.invalidatesParts }
func (s *Set) CustomPseudoInvalid() bool    { return s.customPseudo }

func (s *Set) SetTreeBoundaryCrossing() {
	if s.wholeSubtree || s.treeBoundaryCrossing {
		return
	}
	s.mustBeMutable()
	s.treeBoundaryCrossing = true
}

func (s *Set) SetInsertionPointCrossing() {
	if s.wholeSubtree || s.insertionPointCrossing {
		return
	}
	s.mustBeMutable()
	s.insertionPointCrossing = true
}

func (s *Set) SetInvalidatesSlotted() {
	if s.wholeSubtree || s.invalidatesSlotted {
		return
	}
	s.mustBeMutable()
	s.invalidatesSlotted = true
}

func (s *Set) SetInvalidatesParts() {
	if s.wholeSubtree || s.invalidatesParts {
		return
	}
	s.mustBeMutable()
	s.invalidatesParts = true
}

func (s *Set) SetCustomPseudoInvalid() {
	if s.wholeSubtree || s.customPseudo {
		return
	}
	s.mustBeMutable()
	s.customPseudo = true
}

func (s *Set) AddClass(name string) {
	if s.wholeSubtree {
		return
	}
	s.mustBeMutable()
	s.classes.add(name)
}

func (s *Set) AddID(name string) {
	if s.wholeSubtree {
		return
	}
	s.mustBeMutable()
	s.ids.add(name)
}

func (s *Set) AddTagName(name string) {
	if s.wholeSubtree {
		return
	}
	s.mustBeMutable()
	s.tags.add(name)
}

func (s *Set) AddAttribute(name string) {
	if s.wholeSubtree {
		return
	}
	s.mustBeMutable()
	s.attrs.add(name)
}

func (s *Set) HasClass(name string) bool     { return s.classes.has(name) }
func (s *Set) HasID(name string) bool        { return s.ids.has(name) }
func (s *Set) HasTagName(name string) bool   { return s.tags.has(name) }
func (s *Set) HasAttribute(name string) bool { return s.attrs.has(name) }

// Classes returns sorted class names.
func (s *Set) Classes() []string { return s.classes.sorted() }

// IDs returns sorted ids.
func (s *Set) IDs() []string { return s.ids.sorted() }

// TagNames returns sorted tag names.
func (s *Set) TagNames() []string { return s.tags.sorted() }

// Attributes returns sorted attribute names.
func (s *Set) Attributes() []string { return s.attrs.sorted() }

// IsEmpty reports sets with no names and no flags requiring traversal.
func (s *Set) IsEmpty() bool {
	return len(s.classes) == 0 && len(s.ids) == 0 && len(s.tags) == 0 && len(s.attrs) == 0 &&
		!s.customPseudo && !s.insertionPointCrossing && !s.invalidatesSlotted && !s.invalidatesParts
}

// MaxDirectAdjacentSelectors returns how far (in siblings) the set reaches.
func (s *Set) MaxDirectAdjacentSelectors() uint32 { return s.maxDirectAdjacent }

// UpdateMaxDirectAdjacentSelectors raises sibling distance to at least v.
func (s *Set) UpdateMaxDirectAdjacentSelectors(v uint32) {
	if v <= s.maxDirectAdjacent {
		return
	}
	s.mustBeMutable()
	s.maxDirectAdjacent = v
}

// SiblingDescendants returns set applied to descendants of matching
// siblings, nil when absent.
func (s *Set) SiblingDescendants() *Set { return s.siblingDescendants }

// EnsureSiblingDescendants creates sibling descendant set on demand.
func (s *Set) EnsureSiblingDescendants() *Set {
	if s.siblingDescendants == nil {
		s.mustBeMutable()
		s.siblingDescendants = NewDescendantSet()
	}
	return s.siblingDescendants
}

// Descendants returns descendant set attached to sibling set, nil when
// absent.
func (s *Set) Descendants() *Set { return s.descendants }

// EnsureDescendants creates attached descendant set on demand.
func (s *Set) EnsureDescendants() *Set {
	if s.descendants == nil {
		s.mustBeMutable()
		s.descendants = NewDescendantSet()
	}
	return s.descendants
}

// Copy returns private deep copy of the set owned by the caller.
func (s *Set) Copy() *Set {
	var c *Set
	if s.typ == Siblings {
		c = NewSiblingSet(nil)
		c.maxDirectAdjacent = s.maxDirectAdjacent
		if s.siblingDescendants != nil {
			c.siblingDescendants = s.siblingDescendants.Copy()
		}
		if s.descendants != nil {
			c.descendants = s.descendants.Copy()
		}
	} else {
		c = NewDescendantSet()
	}
	c.copyProperties(s)
	return c
}

func (s *Set) copyProperties(o *Set) {
	s.invalidatesSelf = o.invalidatesSelf
	s.invalidatesNth = o.invalidatesNth
	s.wholeSubtree = o.wholeSubtree
	s.treeBoundaryCrossing = o.treeBoundaryCrossing
	s.insertionPointCrossing = o.insertionPointCrossing
	s.invalidatesSlotted = o.invalidatesSlotted
	s.invalidatesParts = o.invalidatesParts
	s.customPseudo = o.customPseudo
	s.classes = maps.Clone(o.classes)
	s.ids = maps.Clone(o.ids)
	s.tags = maps.Clone(o.tags)
	s.attrs = maps.Clone(o.attrs)
}

// Combine merges other into s. Both sets must be of the same type.
func (s *Set) Combine(other *Set) {
	if s == other || s.IsSelfInvalidationSet() && other.IsSelfInvalidationSet() {
		return
	}
	s.mustBeMutable()

	if s.typ == Siblings && other.typ == Siblings {
		s.UpdateMaxDirectAdjacentSelectors(other.maxDirectAdjacent)
		if other.siblingDescendants != nil {
			s.EnsureSiblingDescendants().Combine(other.siblingDescendants)
		}
		if other.descendants != nil {
			s.EnsureDescendants().Combine(other.descendants)
		}
	}

	if other.invalidatesNth {
		s.SetInvalidatesNth()
	}
	if other.invalidatesSelf {
		s.SetInvalidatesSelf()
	}

	if s.wholeSubtree {
		return
	}
	if other.wholeSubtree {
		s.SetWholeSubtreeInvalid()
		return
	}

	if other.customPseudo {
		s.SetCustomPseudoInvalid()
	}
	if other.treeBoundaryCrossing {
		s.SetTreeBoundaryCrossing()
	}
	if other.insertionPointCrossing {
		s.SetInsertionPointCrossing()
	}
	if other.invalidatesSlotted {
		s.SetInvalidatesSlotted()
	}
	if other.invalidatesParts {
		s.SetInvalidatesParts()
	}

	for name := range other.classes {
		s.AddClass(name)
	}
	for name := range other.ids {
		s.AddID(name)
	}
	for name := range other.tags {
		s.AddTagName(name)
	}
	for name := range other.attrs {
		s.AddAttribute(name)
	}
}

// Equal compares sets structurally, ownership is ignored.
func (s *Set) Equal(o *Set) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	return s.typ == o.typ &&
		s.invalidatesSelf == o.invalidatesSelf &&
		s.invalidatesNth == o.invalidatesNth &&
		s.wholeSubtree == o.wholeSubtree &&
		s.treeBoundaryCrossing == o.treeBoundaryCrossing &&
		s.insertionPointCrossing == o.insertionPointCrossing &&
		s.invalidatesSlotted == o.invalidatesSlotted &&
		s.invalidatesParts == o.invalidatesParts &&
		s.customPseudo == o.customPseudo &&
		s.maxDirectAdjacent == o.maxDirectAdjacent &&
		maps.Equal(s.classes, o.classes) &&
		maps.Equal(s.ids, o.ids) &&
		maps.Equal(s.tags, o.tags) &&
		maps.Equal(s.attrs, o.attrs) &&
		s.siblingDescendants.Equal(o.siblingDescendants) &&
		s.descendants.Equal(o.descendants)
}

// String renders set for debugging: {<flags> #ids .classes tags [attrs] }.
func (s *Set) String() string {
	var meta strings.Builder
	for _, f := range []struct {
		on bool
		c  byte
	}{
		{s.invalidatesSelf, '$'},
		{s.invalidatesNth, 'N'},
		{s.wholeSubtree, 'W'},
		{s.customPseudo, 'C'},
		{s.treeBoundaryCrossing, 'T'},
		{s.insertionPointCrossing, 'I'},
		{s.invalidatesSlotted, 'S'},
		{s.invalidatesParts, 'P'},
	} {
		if f.on {
			meta.WriteByte(f.c)
		}
	}
	if s.typ == Siblings {
		switch s.maxDirectAdjacent {
		case DirectAdjacentMax:
			meta.WriteByte('~')
		case 1:
		default:
			meta.WriteString(strconv.FormatUint(uint64(s.maxDirectAdjacent), 10))
		}
	}

	var sb strings.Builder
	sb.WriteByte('{')
	if meta.Len() > 0 {
		sb.WriteString("<" + meta.String() + ">")
	}
	var names []string
	for _, n := range s.ids.sorted() {
		names = append(names, "#"+n)
	}
	for _, n := range s.classes.sorted() {
		names = append(names, "."+n)
	}
	names = append(names, s.tags.sorted()...)
	for _, n := range s.attrs.sorted() {
		names = append(names, "["+n+"]")
	}
	for _, n := range names {
		sb.WriteString(" " + n)
	}
	if len(names) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteByte('}')
	return sb.String()
}
