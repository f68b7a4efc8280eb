package selector_test

import "testing"

func TestRef_IsCompound(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"div.a.b", true},
		{"#x[href]", true},
		{":not(.a):first-child", true},
		{".a .b", false},
		{".a > .b", false},
		{":hover", false},
		// :only-child is not part of the allowed set
		{":only-child", false},
		{"p::before", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := mustParse(t, tt.in).First().IsCompound(); got != tt.want {
				t.Errorf("IsCompound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsComplexLogicalCombinationsInsideHas(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{":has(.a)", false},
		{":has(.a .b)", false},
		{":has(:is(.a))", false},
		{":has(:is(.a .b))", true},
		{":has(> .x :where(.a + .b))", true},
		{":has(:not(:is(.a > .b)))", true},
		{".a", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel := mustParse(t, tt.in).First().Selector()
			if got := sel.ContainsComplexLogicalCombinationsInsideHasPseudoClass(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
