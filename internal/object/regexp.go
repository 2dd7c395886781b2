package object

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/jsvm-project/jsvm/internal/value"
)

// RegExpData wraps a compiled github.com/dlclark/regexp2 pattern: unlike Go's
// stdlib regexp (RE2, no backreferences/lookaround), regexp2 supports the
// backtracking constructs ECMA-262's regex grammar requires (backreferences,
// lookahead/lookbehind, named groups), which is why this engine reaches for
// it instead of the stdlib package for this one object kind.
type RegExpData struct {
	Source string
	Flags  string
	re     *regexp2.Regexp

	LastIndex int
}

func (*RegExpData) exoticData() {}

func translateFlags(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		}
	}
	return opts
}

// NewRegExp compiles source/flags and returns a RegExp-exotic object.
func NewRegExp(prototype *Object, source, flags string) (*Object, error) {
	re, err := regexp2.Compile(source, translateFlags(flags))
	if err != nil {
		return nil, fmt.Errorf("SyntaxError: invalid regular expression %q: %w", source, err)
	}
	o := New(prototype)
	data := &RegExpData{Source: source, Flags: flags, re: re}
	o.SetExotic(KindRegExp, "RegExp", data, InternalMethods{})
	o.rawDefine(NewPropertyKeyFromString("lastIndex"), property{value: value.Int32(0)}, AttrWritable)
	o.rawDefine(NewPropertyKeyFromString("source"), property{value: value.String(source)}, 0)
	o.rawDefine(NewPropertyKeyFromString("flags"), property{value: value.String(flags)}, 0)
	return o, nil
}

// Exec runs the compiled pattern against s starting at startAt (byte
// offset into a UTF-16-agnostic Go string; callers handle the surrogate
// subtleties at the boundary since regexp2 itself operates on runes).
func (d *RegExpData) Exec(s string, startAt int) (*regexp2.Match, error) {
	m, err := d.re.FindStringMatchStartingAt(s, startAt)
	if err != nil {
		return nil, fmt.Errorf("RegExp exec failed: %w", err)
	}
	return m, nil
}

func (d *RegExpData) Global() bool     { return containsFlag(d.Flags, 'g') }
func (d *RegExpData) Sticky() bool     { return containsFlag(d.Flags, 'y') }
func (d *RegExpData) IgnoreCase() bool { return containsFlag(d.Flags, 'i') }

func containsFlag(flags string, f byte) bool {
	for i := 0; i < len(flags); i++ {
		if flags[i] == f {
			return true
		}
	}
	return false
}
