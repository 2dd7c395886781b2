package value

import "github.com/jsvm-project/jsvm/internal/interner"

// wellKnownSymbols holds one canonical *Symbol per interner well-known id,
// so every package that needs to build a PropertyKey for, say,
// Symbol.iterator gets back the same pointer and PropertyKey.Equal's
// identity comparison works across call sites without a shared realm.
var wellKnownSymbols = map[interner.Symbol]*Symbol{}

// WellKnownSymbol returns the canonical Symbol value for a well-known
// interner id (interner.SymIterator, SymHasInstance, ...), creating it on
// first use.
func WellKnownSymbol(id interner.Symbol) *Symbol {
	if s, ok := wellKnownSymbols[id]; ok {
		return s
	}
	s := &Symbol{WellKnown: id}
	wellKnownSymbols[id] = s
	return s
}
