package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stoutlist/internal/stout"
)

// Metatable names.
const (
	listTypeName = "stout.list"
	iterTypeName = "stout.iter"
)

// registerList installs the global stout table and the list metatable.
func registerList(L *lua.LState, defaultCapacity int) {
	mt := L.NewTypeMetatable(listTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"add":          listAdd,
		"insert":       listInsert,
		"remove":       listRemove,
		"get":          listGet,
		"set":          listSet,
		"len":          listLen,
		"capacity":     listCapacity,
		"clear":        listClear,
		"values":       listValues,
		"nodes":        listNodes,
		"sort":         listSort,
		"sort_reverse": listSortReverse,
		"render":       listRender,
		"check":        listCheck,
		"iter":         listIter,
	}))
	L.SetField(mt, "__len", L.NewFunction(listLen))
	L.SetField(mt, "__tostring", L.NewFunction(listToString))

	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(func(L *lua.LState) int {
		capacity := L.OptInt(1, defaultCapacity)
		l, err := newList(capacity)
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		L.Push(wrap(L, l, listTypeName))
		return 1
	}))
	L.SetField(mod, "default_capacity", lua.LNumber(defaultCapacity))
	L.SetGlobal("stout", mod)
}

func newList(capacity int) (*stout.List[lua.LValue], error) {
	return stout.New(
		stout.WithCapacity[lua.LValue](capacity),
		stout.WithOrder(compareValues),
		stout.WithFormatter(formatValue),
	)
}

func wrap(L *lua.LState, v any, typeName string) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}

// checkList returns the list receiver at stack index 1.
func checkList(L *lua.LState) *stout.List[lua.LValue] {
	ud := L.CheckUserData(1)
	if l, ok := ud.Value.(*stout.List[lua.LValue]); ok {
		return l
	}
	L.ArgError(1, "stout list expected")
	return nil
}

// checkElement returns argument n, rejecting nil.
func checkElement(L *lua.LState, n int) lua.LValue {
	v := L.CheckAny(n)
	if v == lua.LNil {
		L.ArgError(n, "element must not be nil")
	}
	return v
}

// raise turns a list error into a Lua error.
func raise(L *lua.LState, op string, err error) {
	L.RaiseError("%s: %v", op, err)
}

// l:add(v)
func listAdd(L *lua.LState) int {
	l := checkList(L)
	if err := l.Add(checkElement(L, 2)); err != nil {
		raise(L, "add", err)
	}
	return 0
}

// l:insert(pos, v)
func listInsert(L *lua.LState) int {
	l := checkList(L)
	pos := L.CheckInt(2)
	if err := l.Insert(pos, checkElement(L, 3)); err != nil {
		raise(L, "insert", err)
	}
	return 0
}

// l:remove(pos) -> v
func listRemove(L *lua.LState) int {
	l := checkList(L)
	v, err := l.Remove(L.CheckInt(2))
	if err != nil {
		raise(L, "remove", err)
		return 0
	}
	L.Push(v)
	return 1
}

// l:get(pos) -> v
func listGet(L *lua.LState) int {
	l := checkList(L)
	v, err := l.Get(L.CheckInt(2))
	if err != nil {
		raise(L, "get", err)
		return 0
	}
	L.Push(v)
	return 1
}

// l:set(pos, v) -> old
func listSet(L *lua.LState) int {
	l := checkList(L)
	pos := L.CheckInt(2)
	old, err := l.Set(pos, checkElement(L, 3))
	if err != nil {
		raise(L, "set", err)
		return 0
	}
	L.Push(old)
	return 1
}

func listLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L).Len()))
	return 1
}

func listCapacity(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L).Capacity()))
	return 1
}

func listClear(L *lua.LState) int {
	checkList(L).Clear()
	return 0
}

// l:values() -> {v...}
func listValues(L *lua.LState) int {
	l := checkList(L)
	tbl := L.CreateTable(l.Len(), 0)
	for _, v := range l.All() {
		tbl.Append(v)
	}
	L.Push(tbl)
	return 1
}

// l:nodes() -> {{v...}...}
func listNodes(L *lua.LState) int {
	l := checkList(L)
	nodes := l.Nodes()
	tbl := L.CreateTable(len(nodes), 0)
	for _, n := range nodes {
		inner := L.CreateTable(len(n), 0)
		for _, v := range n {
			inner.Append(v)
		}
		tbl.Append(inner)
	}
	L.Push(tbl)
	return 1
}

// l:sort([less])
func listSort(L *lua.LState) int {
	l := checkList(L)
	var cmp func(a, b lua.LValue) int
	if fn := L.OptFunction(2, nil); fn != nil {
		cmp = lessComparator(L, fn)
	}
	if err := l.Sort(cmp); err != nil {
		raise(L, "sort", err)
	}
	return 0
}

func listSortReverse(L *lua.LState) int {
	if err := checkList(L).SortReverse(); err != nil {
		raise(L, "sort_reverse", err)
	}
	return 0
}

// l:render([it]) -> string
func listRender(L *lua.LState) int {
	l := checkList(L)
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		it := checkIteratorAt(L, 2)
		if it.list != l {
			L.ArgError(2, "iterator belongs to another list")
			return 0
		}
		L.Push(lua.LString(l.RenderWithCursor(it.it)))
		return 1
	}
	L.Push(lua.LString(l.Render()))
	return 1
}

// l:check() -> true | false, message
func listCheck(L *lua.LState) int {
	if err := checkList(L).Check(); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func listToString(L *lua.LState) int {
	L.Push(lua.LString(checkList(L).String()))
	return 1
}
