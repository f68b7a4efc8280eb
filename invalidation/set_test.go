package invalidation_test

import (
	"testing"

	"cssinval/invalidation"
)

func TestSet_String(t *testing.T) {
	tests := []struct {
		name  string
		build func() *invalidation.Set
		want  string
	}{
		{
			name:  "empty",
			build: invalidation.NewDescendantSet,
			want:  "{}",
		},
		{
			name:  "self singleton",
			build: invalidation.SelfInvalidationSet,
			want:  "{<$>}",
		},
		{
			name:  "part singleton",
			build: invalidation.PartInvalidationSet,
			want:  "{<TP>}",
		},
		{
			name: "names sorted by kind",
			build: func() *invalidation.Set {
				s := invalidation.NewDescendantSet()
				s.AddClass("b")
				s.AddClass("a")
				s.AddTagName("div")
				s.AddAttribute("href")
				s.AddID("x")
				s.SetInvalidatesSelf()
				return s
			},
			want: "{<$> #x .a .b div [href] }",
		},
		{
			name: "sibling distance",
			build: func() *invalidation.Set {
				s := invalidation.NewSiblingSet(nil)
				s.UpdateMaxDirectAdjacentSelectors(3)
				s.AddClass("c")
				return s
			},
			want: "{<3> .c }",
		},
		{
			name: "unbounded sibling distance",
			build: func() *invalidation.Set {
				s := invalidation.NewSiblingSet(nil)
				s.UpdateMaxDirectAdjacentSelectors(invalidation.DirectAdjacentMax)
				return s
			},
			want: "{<~>}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSet_WholeSubtreeInvalid(t *testing.T) {
	s := invalidation.NewDescendantSet()
	s.AddClass("a")
	s.SetTreeBoundaryCrossing()
	s.SetInvalidatesSlotted()
	s.SetWholeSubtreeInvalid()

	if s.HasClass("a") || s.TreeBoundaryCrossing() || s.InvalidatesSlotted() {
		t.Error("whole subtree invalidation must drop names and flags")
	}

	s.AddClass("b")
	s.SetInvalidatesParts()
	if s.HasClass("b") || s.InvalidatesParts() {
		t.Error("additions after whole subtree invalidation must be ignored")
	}
	if got := s.String(); got != "{<W>}" {
		t.Errorf("String() = %q", got)
	}
}

func TestSet_SingletonIsImmutable(t *testing.T) {
	self := invalidation.SelfInvalidationSet()
	if self.HasOneRef() {
		t.Error("singleton must never report single ownership")
	}

	// no-op on already self invalidating singleton
	self.SetInvalidatesSelf()

	defer func() {
		if recover() == nil {
			t.Error("expected panic when mutating singleton")
		}
	}()
	self.AddClass("a")
}

func TestSet_RefCounting(t *testing.T) {
	s := invalidation.NewDescendantSet()
	if !s.HasOneRef() {
		t.Fatal("new set must have single owner")
	}
	s.Ref()
	if s.HasOneRef() {
		t.Error("shared set must not report single owner")
	}
	s.Release()
	if !s.HasOneRef() {
		t.Error("released set must be back to single owner")
	}
}

func TestSet_CopyIsDeep(t *testing.T) {
	s := invalidation.NewSiblingSet(nil)
	s.AddClass("a")
	s.EnsureDescendants().AddClass("d")
	s.EnsureSiblingDescendants().AddTagName("span")
	s.UpdateMaxDirectAdjacentSelectors(2)

	c := s.Copy()
	if !c.Equal(s) {
		t.Fatalf("copy %s differs from %s", c, s)
	}

	c.AddClass("b")
	c.Descendants().AddClass("e")
	if s.HasClass("b") || s.Descendants().HasClass("e") {
		t.Error("mutating copy changed the original")
	}

	self := invalidation.SelfInvalidationSet().Copy()
	if self.IsSelfInvalidationSet() || !self.InvalidatesSelf() || !self.HasOneRef() {
		t.Error("copy of singleton must be private self invalidating set")
	}
}

func TestSet_Combine(t *testing.T) {
	a := invalidation.NewSiblingSet(nil)
	a.AddClass("a")

	b := invalidation.NewSiblingSet(nil)
	b.AddID("b")
	b.UpdateMaxDirectAdjacentSelectors(invalidation.DirectAdjacentMax)
	b.EnsureDescendants().AddClass("d")
	b.SetInvalidatesNth()

	a.Combine(b)
	if !a.HasClass("a") || !a.HasID("b") {
		t.Error("names were not merged")
	}
	if a.MaxDirectAdjacentSelectors() != invalidation.DirectAdjacentMax {
		t.Error("max direct adjacent was not merged")
	}
	if a.Descendants() == nil || !a.Descendants().HasClass("d") {
		t.Error("descendant set was not merged")
	}
	if !a.InvalidatesNth() {
		t.Error("nth flag was not merged")
	}

	w := invalidation.NewDescendantSet()
	w.SetWholeSubtreeInvalid()
	d := invalidation.NewDescendantSet()
	d.AddClass("x")
	d.Combine(w)
	if !d.WholeSubtreeInvalid() || d.HasClass("x") {
		t.Error("combining whole subtree set must make target whole subtree invalid")
	}

	// combining with itself is a no-op
	d.Combine(d)
}

func TestSet_IsEmpty(t *testing.T) {
	s := invalidation.NewDescendantSet()
	if !s.IsEmpty() {
		t.Error("new set must be empty")
	}
	s.SetInvalidatesSelf()
	if !s.IsEmpty() {
		t.Error("self invalidation alone does not make set non-empty")
	}
	s.SetInvalidatesSlotted()
	if s.IsEmpty() {
		t.Error("slotted invalidation makes set non-empty")
	}
}

func TestLists(t *testing.T) {
	var l invalidation.Lists
	if !l.IsEmpty() {
		t.Error("zero lists must be empty")
	}
	l.Descendants = append(l.Descendants, invalidation.SelfInvalidationSet())
	if l.IsEmpty() {
		t.Error("lists with a set must not be empty")
	}
	if got := l.String(); got != "descendants: {<$>} siblings:" {
		t.Errorf("String() = %q", got)
	}
	l.Reset()
	if !l.IsEmpty() {
		t.Error("Reset() must empty lists")
	}
}
