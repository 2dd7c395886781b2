package object

import (
	"github.com/davecgh/go-spew/spew"
)

// dumpConfig matches the teacher's debug-formatting conventions (Stringer/
// error methods not invoked, pointer addresses hidden, max depth bounded so
// a cyclic prototype chain can't hang a debugger session).
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	MaxDepth:                6,
}

// Dump renders o's shape chain and storage as debugging text. The console
// globals format object arguments with it (internal/realm/globals.go), and
// vm.ThrownError.Error uses it for a thrown object.
func Dump(o *Object) string {
	type snapshot struct {
		Class  string
		Kind   string
		Keys   []string
		Values []any
	}
	keys, _ := ordinaryOwnPropertyKeys(o)
	snap := snapshot{Class: o.className, Kind: o.kind.String()}
	for _, k := range keys {
		snap.Keys = append(snap.Keys, k.String())
		if p, ok := o.rawGetOwn(k); ok {
			snap.Values = append(snap.Values, p.value)
		}
	}
	return dumpConfig.Sdump(snap)
}
