package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stoutlist/internal/stout"
)

// luaIterator pairs an iterator with its list so render can check ownership.
type luaIterator struct {
	list *stout.List[lua.LValue]
	it   *stout.Iterator[lua.LValue]
}

func registerIterator(L *lua.LState) {
	mt := L.NewTypeMetatable(iterTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"has_next":       iterHasNext,
		"has_previous":   iterHasPrevious,
		"next":           iterNext,
		"previous":       iterPrevious,
		"next_index":     iterNextIndex,
		"previous_index": iterPreviousIndex,
		"set":            iterSet,
		"insert":         iterInsert,
		"delete":         iterDelete,
	}))
}

// l:iter([pos]) -> it
func listIter(L *lua.LState) int {
	l := checkList(L)
	it, err := l.IterAt(L.OptInt(2, 0))
	if err != nil {
		raise(L, "iter", err)
		return 0
	}
	L.Push(wrap(L, &luaIterator{list: l, it: it}, iterTypeName))
	return 1
}

func checkIteratorAt(L *lua.LState, n int) *luaIterator {
	ud := L.CheckUserData(n)
	if it, ok := ud.Value.(*luaIterator); ok {
		return it
	}
	L.ArgError(n, "stout iterator expected")
	return nil
}

func checkIterator(L *lua.LState) *luaIterator {
	return checkIteratorAt(L, 1)
}

func iterHasNext(L *lua.LState) int {
	L.Push(lua.LBool(checkIterator(L).it.HasNext()))
	return 1
}

func iterHasPrevious(L *lua.LState) int {
	L.Push(lua.LBool(checkIterator(L).it.HasPrevious()))
	return 1
}

// it:next() -> v, or nil at the end
func iterNext(L *lua.LState) int {
	v, err := checkIterator(L).it.Next()
	return pushStep(L, "next", v, err)
}

// it:previous() -> v, or nil at the start
func iterPrevious(L *lua.LState) int {
	v, err := checkIterator(L).it.Previous()
	return pushStep(L, "previous", v, err)
}

// pushStep returns nil for the end of the sequence so scripts can loop with
// "for v in it.next, it do"; other errors are raised.
func pushStep(L *lua.LState, op string, v lua.LValue, err error) int {
	if errors.Is(err, stout.ErrNoSuchElement) {
		L.Push(lua.LNil)
		return 1
	}
	if err != nil {
		raise(L, op, err)
		return 0
	}
	L.Push(v)
	return 1
}

func iterNextIndex(L *lua.LState) int {
	L.Push(lua.LNumber(checkIterator(L).it.NextIndex()))
	return 1
}

func iterPreviousIndex(L *lua.LState) int {
	L.Push(lua.LNumber(checkIterator(L).it.PreviousIndex()))
	return 1
}

func iterSet(L *lua.LState) int {
	it := checkIterator(L)
	if err := it.it.Set(checkElement(L, 2)); err != nil {
		raise(L, "set", err)
	}
	return 0
}

func iterInsert(L *lua.LState) int {
	it := checkIterator(L)
	if err := it.it.Insert(checkElement(L, 2)); err != nil {
		raise(L, "insert", err)
	}
	return 0
}

func iterDelete(L *lua.LState) int {
	if err := checkIterator(L).it.Delete(); err != nil {
		raise(L, "delete", err)
	}
	return 0
}
