package selector

// StyleScope describes one @scope block. From is the scope-start list (nil
// for implicit scope rooted at the owner node), To the optional scope-end
// list. Parent links to the enclosing @scope, if any.
type StyleScope struct {
	From   *List
	To     *List
	Parent *StyleScope
}

// Chain iterates from s outwards through enclosing scopes.
func (s *StyleScope) Chain() []*StyleScope {
	var out []*StyleScope
	for cur := s; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}
