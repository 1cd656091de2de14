// Package script exposes stout lists to Lua.
//
// Scripts get a global "stout" table:
//
//	local l = stout.new(4)        -- capacity defaults to the engine's
//	l:add("b"); l:add("a"); l:insert(0, "c")
//	l:sort()                      -- or l:sort(function(a, b) return a > b end)
//	print(l:render())             -- [(a, b, c, -)]
//	local it = l:iter()
//	while it:has_next() do
//	  if it:next() == "b" then it:delete() end
//	end
//
// Positions are zero-based, matching the Go API. Errors from the list (bad
// positions, nil elements, iterator misuse) are raised as Lua errors.
//
// The runtime opens only the base, table, string and math libraries and
// removes dofile, loadfile, load and loadstring.
package script
