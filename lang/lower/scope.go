package lower

import (
	"github.com/alderlang/alder/lang/mir"
	"github.com/dolthub/swiss"
)

// itemKind distinguishes how a bound name resolves: Var names a stack
// slot that must be loaded, Arg names an argument instruction whose
// value is used directly.
type itemKind uint8

const (
	kindVar itemKind = iota
	kindArg
)

type scopeItem struct {
	index mir.Index
	kind  itemKind
}

// A scope maps identifier text to the instruction that binds it. Each
// scope keeps a pointer to its parent; lookups walk the chain. Scopes
// live only for the duration of the lowering pass.
type scope struct {
	parent *scope
	names  *swiss.Map[string, scopeItem]
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: swiss.NewMap[string, scopeItem](8)}
}

func (s *scope) bind(name string, index mir.Index, kind itemKind) {
	s.names.Put(name, scopeItem{index: index, kind: kind})
}

// lookup walks the scope chain for name.
func (s *scope) lookup(name string) (scopeItem, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if it, ok := sc.names.Get(name); ok {
			return it, true
		}
	}
	return scopeItem{}, false
}
