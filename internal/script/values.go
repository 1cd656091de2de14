package script

import (
	"cmp"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// typeRank orders values of different Lua types: nil, booleans, numbers,
// strings, then everything else by type name.
func typeRank(v lua.LValue) int {
	switch v.Type() {
	case lua.LTNil:
		return 0
	case lua.LTBool:
		return 1
	case lua.LTNumber:
		return 2
	case lua.LTString:
		return 3
	default:
		return 4
	}
}

// compareValues is the natural order of list elements.
func compareValues(a, b lua.LValue) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case lua.LBool:
		bv := b.(lua.LBool)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case lua.LNumber:
		return cmp.Compare(float64(av), float64(b.(lua.LNumber)))
	case lua.LString:
		return strings.Compare(string(av), string(b.(lua.LString)))
	}
	return strings.Compare(a.Type().String(), b.Type().String())
}

// formatValue renders an element inside Render output.
func formatValue(v lua.LValue) string {
	return v.String()
}

// lessComparator adapts a Lua "less than" function to a three-way comparison.
// Errors raised by fn propagate as Lua errors.
func lessComparator(L *lua.LState, fn *lua.LFunction) func(a, b lua.LValue) int {
	less := func(x, y lua.LValue) bool {
		L.Push(fn)
		L.Push(x)
		L.Push(y)
		L.Call(2, 1)
		r := L.Get(-1)
		L.Pop(1)
		return lua.LVAsBool(r)
	}
	return func(a, b lua.LValue) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	}
}
