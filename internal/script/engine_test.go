package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stoutlist/internal/stout"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := NewEngine(append([]Option{WithOutput(&out)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, &out
}

func TestNewEngineRejectsOddCapacity(t *testing.T) {
	_, err := NewEngine(WithCapacity(3))
	assert.ErrorIs(t, err, stout.ErrInvalidArgument)
}

func TestEngineID(t *testing.T) {
	a, _ := newTestEngine(t)
	b, _ := newTestEngine(t)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRunPrintsRender(t *testing.T) {
	e, out := newTestEngine(t)
	err := e.Run(context.Background(), "render", `
local l = stout.new()
for _, s in ipairs({"A", "B", "C", "D", "E"}) do l:add(s) end
print(l:render())
print(#l, l:len(), l:capacity())
print(tostring(l))
`)
	require.NoError(t, err)
	assert.Equal(t, "[(A, B, C, D), (E, -, -, -)]\n5\t5\t4\n[A, B, C, D, E]\n", out.String())
}

func TestRunUsesDefaultCapacity(t *testing.T) {
	e, out := newTestEngine(t, WithCapacity(2))
	require.NoError(t, e.Run(context.Background(), "cap", `
local l = stout.new()
l:add(1); l:add(2); l:add(3)
print(stout.default_capacity, l:render())
`))
	assert.Equal(t, "2\t[(1, 2), (3, -)]\n", out.String())
}

func TestRunRaisesListErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"remove out of range", `stout.new():remove(0)`, "out of bounds"},
		{"insert past end", `local l = stout.new(); l:insert(2, "x")`, "out of bounds"},
		{"nil element", `stout.new():add(nil)`, "must not be nil"},
		{"odd capacity", `stout.new(5)`, "positive and even"},
		{"set without next", `local l = stout.new(); l:add(1); l:iter():set(2)`, "no current element"},
		{"foreign iterator", `local a, b = stout.new(), stout.new(); a:render(b:iter())`, "another list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			err := e.Run(context.Background(), tt.name, tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunIterator(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.Run(context.Background(), "iter", `
local l = stout.new()
for i = 1, 10 do l:add(i) end
local it = l:iter()
while it:has_next() do
  local v = it:next()
  if v % 2 == 0 then it:delete() elseif v == 5 then it:set(50) end
end
print(tostring(l))
it = l:iter(l:len())
local back = {}
for v in it.previous, it do back[#back + 1] = tostring(v) end
print(table.concat(back, ","))
local mid = l:iter(2)
print(l:render(mid))
assert(l:check())
`))
	assert.Equal(t, "[1, 3, 50, 7, 9]\n9,7,50,3,1\n[(1, 3, -, -), (| 50, 7, -, -), (9, -, -, -)]\n", out.String())
}

func TestRunSort(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.Run(context.Background(), "sort", `
local l = stout.new(2)
for _, v in ipairs({"pear", 3, true, "apple", 1, false}) do l:add(v) end
l:sort()
print(tostring(l))
l:sort_reverse()
print(tostring(l))
l:sort(function(a, b) return tostring(a) < tostring(b) end)
print(tostring(l))
local nodes = l:nodes()
print(#nodes, #nodes[1], #nodes[3])
`))
	assert.Equal(t,
		"[false, true, 1, 3, apple, pear]\n"+
			"[pear, apple, 3, 1, true, false]\n"+
			"[1, 3, apple, false, pear, true]\n"+
			"3\t2\t2\n",
		out.String())
}

func TestRunSortComparatorErrorKeepsList(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.Run(context.Background(), "sort-error", `
local l = stout.new()
for i = 5, 1, -1 do l:add(i) end
local ok, err = pcall(function() l:sort(function() error("boom") end) end)
print(ok, string.find(err, "boom") ~= nil)
print(tostring(l))
`))
	assert.Equal(t, "false\ttrue\n[5, 4, 3, 2, 1]\n", out.String())
}

func TestRunTimeout(t *testing.T) {
	e, _ := newTestEngine(t, WithTimeout(50*time.Millisecond))
	start := time.Now()
	err := e.Run(context.Background(), "spin", `while true do end`)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCallStackSize(t *testing.T) {
	e, _ := newTestEngine(t, WithCallStackSize(16))
	code := `
local function depth(n)
  if n == 0 then return 0 end
  return 1 + depth(n - 1)
end
result = depth(N)
`
	require.NoError(t, e.Run(context.Background(), "shallow", strings.Replace(code, "N", "5", 1)))
	assert.Equal(t, lua.LNumber(5), e.Global("result"))
	assert.Error(t, e.Run(context.Background(), "deep", strings.Replace(code, "N", "100", 1)))
}

func TestRunCancelledContext(t *testing.T) {
	e, _ := newTestEngine(t, WithTimeout(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, e.Run(ctx, "cancelled", `local x = 0 for i = 1, 1e9 do x = x + i end`))
}

func TestSandbox(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.Run(context.Background(), "sandbox", `
print(dofile == nil, loadfile == nil, load == nil, io == nil, os == nil)
`))
	assert.Equal(t, "true\ttrue\ttrue\ttrue\ttrue\n", out.String())
}

func TestCompileError(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Run(context.Background(), "broken", `local = 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling broken")
}

func TestRunFile(t *testing.T) {
	e, _ := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "build.lua")
	require.NoError(t, os.WriteFile(path, []byte(`result = stout.new(); result:add("x")`), 0o644))
	require.NoError(t, e.RunFile(context.Background(), path))

	ud, ok := e.Global("result").(*lua.LUserData)
	require.True(t, ok)
	l, ok := ud.Value.(*stout.List[lua.LValue])
	require.True(t, ok)
	assert.Equal(t, 1, l.Len())

	assert.Error(t, e.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")))
}

func TestClosedEngine(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)
	e.Close()
	e.Close()
	assert.True(t, errors.Is(e.Run(context.Background(), "late", "x = 1"), ErrEngineClosed))
}

func TestCompareValues(t *testing.T) {
	ordered := []lua.LValue{
		lua.LFalse, lua.LTrue, lua.LNumber(-1), lua.LNumber(2.5), lua.LString("a"), lua.LString("b"),
	}
	for i := range ordered {
		for j := range ordered {
			got := compareValues(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0, i > j && got <= 0, i == j && got != 0:
				t.Errorf("compareValues(%v, %v) = %d", ordered[i], ordered[j], got)
			}
		}
	}
	assert.True(t, strings.HasPrefix(formatValue(lua.LNumber(3)), "3"))
}
