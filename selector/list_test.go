package selector_test

import (
	"testing"

	"cssinval/selector"
)

func TestList_Complexes(t *testing.T) {
	list := mustParse(t, ".a .b, #c, div > p")
	if n := list.ComplexCount(); n != 3 {
		t.Fatalf("ComplexCount() = %d, want 3", n)
	}
	if list.IsSingleComplexSelector() {
		t.Error("IsSingleComplexSelector() = true for three selectors")
	}

	var got []string
	for c := range list.Complexes() {
		got = append(got, c.String())
	}
	want := []string{".a .b", "#c", "div > p"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("complex %d = %q, want %q", i, got[i], want[i])
		}
	}

	last := list.First()
	for n := list.Next(last); n.Valid(); n = list.Next(n) {
		last = n
	}
	for r := range last.Simples() {
		last = r
	}
	if !last.Selector().IsLastInList() {
		t.Error("final selector must be marked last in list")
	}
}

func TestList_Empty(t *testing.T) {
	var nilList *selector.List
	if !nilList.IsEmpty() || nilList.Len() != 0 {
		t.Error("nil list must be empty")
	}
	if nilList.First().Valid() {
		t.Error("First() of nil list must be invalid")
	}
	if !selector.EmptyList().IsEmpty() {
		t.Error("EmptyList() must be empty")
	}
	if n := selector.EmptyList().ComplexCount(); n != 0 {
		t.Errorf("ComplexCount() = %d", n)
	}
}

func TestRef_LastInCompound(t *testing.T) {
	list := mustParse(t, "div.a.b span")
	first := list.First()
	if !first.LastInCompound().Selector().IsLastInCompound() {
		t.Fatal("LastInCompound() did not stop at compound end")
	}

	next := first.LastInCompound().TagHistory()
	n := 0
	for range next.Compound() {
		n++
	}
	if n != 3 {
		t.Errorf("second compound has %d selectors, want 3", n)
	}
}

func TestNewList_NormalizesLeftmostRelation(t *testing.T) {
	src := mustParse(t, "a b")
	// take only the rightmost simple selector, it carries descendant relation
	sel := *src.First().Selector()
	list := selector.NewList([]selector.Selector{sel})
	if r := list.First().Selector().Relation(); r != selector.RelationSubSelector {
		t.Errorf("leftmost relation = %s, want sub-selector", r)
	}
}
