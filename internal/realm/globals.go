package realm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// installGlobals wires the remaining free functions and objects every
// script-level global scope resolves against (spec.md §5 "global
// object"): console, the legacy parseInt/parseFloat/isNaN/isFinite
// functions, and globalThis itself. The constructor objects
// (Object/Array/String/...) are attached by their own install*Intrinsics
// functions as they're built, not duplicated here.
func installGlobals(r *Realm) {
	installMapSetIntrinsics(r)
	installRegExpIntrinsics(r)

	defineValue(r.globalObject, "globalThis", value.Object(r.globalObject))
	defineValue(r.globalObject, "undefined", value.Undefined)
	defineValue(r.globalObject, "NaN", value.Number(math.NaN()))
	defineValue(r.globalObject, "Infinity", value.Number(math.Inf(1)))

	console := object.New(r.ObjectProto)
	logFn := func(level string) object.NativeFunction {
		return func(this value.Value, args []value.Value) (value.Value, error) {
			parts := make([]any, len(args))
			for i, a := range args {
				s, err := consoleFormat(a)
				if err != nil {
					return value.Value{}, err
				}
				parts[i] = s
			}
			switch level {
			case "error":
				r.Log.Error(fmt.Errorf("console.error"), fmt.Sprint(parts...))
			case "warn":
				r.Log.V(0).Info(fmt.Sprint(parts...), "level", "warn")
			default:
				r.Log.V(1).Info(fmt.Sprint(parts...))
			}
			return value.Undefined, nil
		}
	}
	defineMethod(console, r.FunctionProto, "log", 0, logFn("log"))
	defineMethod(console, r.FunctionProto, "info", 0, logFn("log"))
	defineMethod(console, r.FunctionProto, "warn", 0, logFn("warn"))
	defineMethod(console, r.FunctionProto, "error", 0, logFn("error"))
	defineValue(r.globalObject, "console", value.Object(console))

	defineMethod(r.globalObject, r.FunctionProto, "parseInt", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		radix := 0
		if len(args) > 1 && !args[1].IsUndefined() {
			rv, err := value.ToUint32(args[1])
			if err != nil {
				return value.Value{}, err
			}
			radix = int(rv)
		}
		return value.Number(parseIntString(s, radix)), nil
	})
	defineMethod(r.globalObject, r.FunctionProto, "parseFloat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(parseFloatString(s)), nil
	})
	defineMethod(r.globalObject, r.FunctionProto, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := value.ToNumber(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(math.IsNaN(n.AsFloat64())), nil
	})
	defineMethod(r.globalObject, r.FunctionProto, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := value.ToNumber(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		f := n.AsFloat64()
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
}

func consoleFormat(v value.Value) (string, error) {
	if o, ok := v.AsObject().(*object.Object); ok {
		return object.Dump(o), nil
	}
	return value.ToStringValue(v)
}

// parseIntString implements the Number.parseInt/global parseInt algorithm
// (ECMA-262 21.1.2.13): skip leading whitespace, take an optional sign, an
// optional 0x/0X radix-16 prefix, then as long a prefix of radix digits as
// parses, discarding anything after the first invalid digit instead of
// erroring.
func parseIntString(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if radix == 0 {
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			radix = 16
			s = s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		// overflow is still a valid (if imprecise) double per the spec's
		// digit-by-digit accumulation; fall back to a float parse.
		f, ferr := strconv.ParseFloat(s[:end], 64)
		if ferr != nil {
			return math.NaN()
		}
		n64 := f
		if neg {
			n64 = -n64
		}
		return n64
	}
	f := float64(n)
	if neg {
		f = -f
	}
	return f
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// parseFloatString implements the global parseFloat algorithm (ECMA-262
// 21.1.2.12): take the longest prefix that parses as a StrDecimalLiteral,
// else NaN.
func parseFloatString(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp && seenDigit:
			seenExp = true
		case (c == '+' || c == '-') && end > 0 && (s[end-1] == 'e' || s[end-1] == 'E'):
		case (c == '+' || c == '-') && end == 0:
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
