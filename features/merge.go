package features

import (
	"maps"

	"go.uber.org/zap"

	"cssinval/invalidation"
	"cssinval/selector"
)

// Merge unions other into r. Sets of other are shared, not copied, and are
// copied lazily by whichever side mutates them first.
func (r *RuleFeatureSet) Merge(other *RuleFeatureSet) {
	if other == nil || other == r {
		return
	}

	mergeMap(r.classSets, other.classSets)
	mergeMap(r.idSets, other.idSets)
	mergeMap(r.attrSets, other.attrSets)
	mergeMap(r.pseudoSets, other.pseudoSets)

	mergeSlot(&r.universalSiblingSet, other.universalSiblingSet)
	mergeSlot(&r.nthSet, other.nthSet)
	mergeSlot(&r.typeRuleSet, other.typeRuleSet)

	r.metadata.Merge(other.metadata)
	r.mediaFlags.Add(other.mediaFlags)

	mergeStrings(&r.classesInHas, other.classesInHas)
	mergeStrings(&r.attributesInHas, other.attributesInHas)
	mergeStrings(&r.idsInHas, other.idsInHas)
	mergeStrings(&r.tagNamesInHas, other.tagNamesInHas)
	if len(other.pseudosInHas) > 0 {
		if r.pseudosInHas == nil {
			r.pseudosInHas = make(map[selector.PseudoType]struct{}, len(other.pseudosInHas))
		}
		maps.Copy(r.pseudosInHas, other.pseudosInHas)
	}
	r.universalInHas = r.universalInHas || other.universalInHas
	r.notInHas = r.notInHas || other.notInHas

	r.log.Debug("Merged feature set",
		zap.Int("classes", len(r.classSets)),
		zap.Int("ids", len(r.idSets)),
		zap.Int("attributes", len(r.attrSets)),
		zap.Int("pseudos", len(r.pseudoSets)))
}

func mergeMap[K comparable](dst, src map[K]*invalidation.Set) {
	for key, set := range src {
		slot := dst[key]
		mergeSlot(&slot, set)
		dst[key] = slot
	}
}

// mergeSlot shares set when slot is empty and combines it into a mutable
// version of slot otherwise.
func mergeSlot(slot **invalidation.Set, set *invalidation.Set) {
	if set == nil {
		return
	}
	if *slot == nil {
		*slot = set.Ref()
		return
	}
	pos := positionAncestor
	if set.IsSelfInvalidationSet() {
		pos = positionSubject
	}
	ensureMutableInvalidationSet(set.Type(), pos, slot).Combine(set)
}

func mergeStrings(dst *stringSet, src stringSet) {
	for v := range src {
		dst.add(v)
	}
}
