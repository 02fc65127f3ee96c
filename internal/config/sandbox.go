package config

import (
	lua "github.com/yuin/gopher-lua"
)

// safeLibs are the only standard libraries a settings file gets. os, io,
// debug, package (require), coroutine and channel are never opened.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// baseLoaders are the base-library functions that read or compile code
// from outside the settings file.
var baseLoaders = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// newSandboxedVM creates a Lua state with a bounded call stack and only
// the safe libraries loaded.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		SkipOpenLibs:  true,
	})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range baseLoaders {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
