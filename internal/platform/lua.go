package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// LuaGlobal is the name settings files use to read the host description.
const LuaGlobal = "platform"

// rpmArch maps a release architecture to the rpm and AppImage spelling.
var rpmArch = map[string]string{
	ArchAMD64: "x86_64",
	ArchARM64: "aarch64",
}

// ExposeToLua installs info as the read-only global "platform":
//
//	platform.arch                      -- "amd64" or "arm64" (deb spelling)
//	platform.arch_rpm                  -- "x86_64" or "aarch64"
//	platform.distro                    -- {id, family, version} or nil
//	platform.is_debian_family, ...     -- booleans
//	platform.when(cond, value)         -- value if cond, else nil
func ExposeToLua(L *lua.LState, info *Info) {
	t := L.NewTable()

	strs := map[string]string{
		"os":       info.OS,
		"arch":     info.Arch,
		"arch_raw": info.ArchRaw,
		"arch_rpm": rpmArch[info.Arch],
	}
	for k, v := range strs {
		t.RawSetString(k, lua.LString(v))
	}

	flags := map[string]bool{
		"is_linux":         info.IsLinux(),
		"is_amd64":         info.IsAMD64(),
		"is_arm64":         info.IsARM64(),
		"is_debian_family": info.IsDebianFamily(),
		"is_rhel_family":   info.IsRHELFamily(),
		"is_fedora_family": info.IsFedoraFamily(),
		"is_arch_family":   info.IsArchFamily(),
	}
	for k, v := range flags {
		t.RawSetString(k, lua.LBool(v))
	}

	if d := info.GetDistro(); d != nil {
		distro := L.NewTable()
		distro.RawSetString("id", lua.LString(d.ID))
		distro.RawSetString("family", lua.LString(d.Family))
		distro.RawSetString("version", lua.LString(d.Version))
		t.RawSetString("distro", frozen(L, distro, LuaGlobal+".distro"))
	}

	t.RawSetString("when", L.NewFunction(luaWhen))

	L.SetGlobal(LuaGlobal, frozen(L, t, LuaGlobal))
}

func luaWhen(L *lua.LState) int {
	if L.CheckBool(1) {
		L.Push(L.Get(2))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// frozen wraps t in an empty proxy that reads through to t and raises on
// any assignment. The metatable itself is hidden from getmetatable and
// setmetatable.
func frozen(L *lua.LState, t *lua.LTable, name string) *lua.LTable {
	mt := L.NewTable()
	mt.RawSetString("__index", t)
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s is read-only", name)
		return 0
	}))
	mt.RawSetString("__metatable", lua.LString("locked"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
