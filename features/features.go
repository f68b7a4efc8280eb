package features

import "cssinval/invalidation"

// maxDirectAdjacentRun is the longest run of "+" combinators tracked
// precisely, longer runs are treated as "~".
const maxDirectAdjacentRun = 31

// Features summarizes what has to be true of an element (or its siblings)
// for the part of the selector walked so far to match. It is a value type:
// copies are independent, except for name slices which are only appended to
// after being cleared.
type Features struct {
	Classes         []string
	Attributes      []string
	IDs             []string
	TagNames        []string
	EmittedTagNames []string // tag names already recorded in id/class/attribute sets

	MaxDirectAdjacentSelectors uint32
	DescendantFeaturesDepth    int

	InvalidateCustomPseudo            bool
	HasNthPseudo                      bool
	WholeSubtree                      bool
	TreeBoundaryCrossing              bool
	InsertionPointCrossing            bool
	ContentPseudoCrossing             bool
	InvalidatesSlotted                bool
	InvalidatesParts                  bool
	HasFeaturesForRuleSetInvalidation bool
}

// Size counts collected names.
func (f *Features) Size() int {
	return len(f.Classes) + len(f.Attributes) + len(f.IDs) + len(f.TagNames) + len(f.EmittedTagNames)
}

// HasFeatures reports whether features narrow invalidation at all.
func (f *Features) HasFeatures() bool {
	return f.Size() > 0 || f.InvalidateCustomPseudo || f.InvalidatesParts
}

// HasIDClassOrAttribute reports features which can key invalidation sets.
func (f *Features) HasIDClassOrAttribute() bool {
	return len(f.Classes) > 0 || len(f.Attributes) > 0 || len(f.IDs) > 0
}

func (f *Features) clearNames() {
	f.Classes = nil
	f.Attributes = nil
	f.IDs = nil
	f.TagNames = nil
	f.EmittedTagNames = nil
}

// NarrowToClass makes class the only feature unless features already are a
// single id or class.
func (f *Features) NarrowToClass(name string) {
	if f.Size() == 1 && (len(f.IDs) > 0 || len(f.Classes) > 0) {
		return
	}
	f.clearNames()
	f.Classes = append(f.Classes, name)
}

// NarrowToAttribute makes attribute the only feature unless features already
// are a single id, class or attribute.
func (f *Features) NarrowToAttribute(name string) {
	if f.Size() == 1 && (len(f.IDs) > 0 || len(f.Classes) > 0 || len(f.Attributes) > 0) {
		return
	}
	f.clearNames()
	f.Attributes = append(f.Attributes, name)
}

func (f *Features) NarrowToID(name string) {
	if f.Size() == 1 {
		return
	}
	f.clearNames()
	f.IDs = append(f.IDs, name)
}

func (f *Features) NarrowToTag(name string) {
	if f.Size() == 1 {
		return
	}
	f.clearNames()
	f.TagNames = append(f.TagNames, name)
}

// NarrowToFeatures replaces names with the ones of other when other is the
// narrower (smaller, non empty) choice.
func (f *Features) NarrowToFeatures(other *Features) {
	size, otherSize := f.Size(), other.Size()
	if size == 0 || (1 <= otherSize && otherSize < size) {
		f.clearNames()
		f.Add(other)
	}
}

// Add unions other into f.
func (f *Features) Add(other *Features) {
	f.Classes = append(f.Classes, other.Classes...)
	f.Attributes = append(f.Attributes, other.Attributes...)
	f.IDs = append(f.IDs, other.IDs...)
	if other.HasIDClassOrAttribute() {
		f.EmittedTagNames = append(f.EmittedTagNames, other.TagNames...)
	} else {
		f.TagNames = append(f.TagNames, other.TagNames...)
	}
	f.EmittedTagNames = append(f.EmittedTagNames, other.EmittedTagNames...)
	f.MaxDirectAdjacentSelectors = max(f.MaxDirectAdjacentSelectors, other.MaxDirectAdjacentSelectors)
	f.InvalidateCustomPseudo = f.InvalidateCustomPseudo || other.InvalidateCustomPseudo
	f.WholeSubtree = f.WholeSubtree || other.WholeSubtree
	f.TreeBoundaryCrossing = f.TreeBoundaryCrossing || other.TreeBoundaryCrossing
	f.InsertionPointCrossing = f.InsertionPointCrossing || other.InsertionPointCrossing
	f.ContentPseudoCrossing = f.ContentPseudoCrossing || other.ContentPseudoCrossing
	f.InvalidatesSlotted = f.InvalidatesSlotted || other.InvalidatesSlotted
	f.InvalidatesParts = f.InvalidatesParts || other.InvalidatesParts
	f.HasNthPseudo = f.HasNthPseudo || other.HasNthPseudo
}

// clone returns copy with private name slices.
func (f Features) clone() Features {
	f.Classes = append([]string(nil), f.Classes...)
	f.Attributes = append([]string(nil), f.Attributes...)
	f.IDs = append([]string(nil), f.IDs...)
	f.TagNames = append([]string(nil), f.TagNames...)
	f.EmittedTagNames = append([]string(nil), f.EmittedTagNames...)
	return f
}

// incrementDirectAdjacent extends "+" run, saturating to unbounded.
func (f *Features) incrementDirectAdjacent() {
	if f.MaxDirectAdjacentSelectors == invalidation.DirectAdjacentMax {
		return
	}
	if f.MaxDirectAdjacentSelectors >= maxDirectAdjacentRun {
		f.MaxDirectAdjacentSelectors = invalidation.DirectAdjacentMax
		return
	}
	f.MaxDirectAdjacentSelectors++
}

// scopeState is the part of Features restored when leaving nested list.
type scopeState struct {
	maxDirectAdjacent      uint32
	depth                  int
	treeBoundaryCrossing   bool
	insertionPointCrossing bool
}

func (f *Features) saveScope() scopeState {
	return scopeState{
		maxDirectAdjacent:      f.MaxDirectAdjacentSelectors,
		depth:                  f.DescendantFeaturesDepth,
		treeBoundaryCrossing:   f.TreeBoundaryCrossing,
		insertionPointCrossing: f.InsertionPointCrossing,
	}
}

func (f *Features) restoreScope(s scopeState) {
	f.MaxDirectAdjacentSelectors = s.maxDirectAdjacent
	f.DescendantFeaturesDepth = s.depth
	f.TreeBoundaryCrossing = s.treeBoundaryCrossing
	f.InsertionPointCrossing = s.insertionPointCrossing
}
