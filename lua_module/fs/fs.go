package fs

import (
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// Loader opens read-only file system helpers for settings scripts.
func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), exports)

	L.Push(mod)

	return 1
}

var exports = map[string]lua.LGFunction{
	"exists":   exists,
	"is_dir":   isDir,
	"list_dir": listDir,
	"read":     read,

	"join":      join,
	"split":     split,
	"split_ext": splitExt,
	"dirname":   dirname,
	"basename":  basename,
	"ext":       ext,
}

func exists(L *lua.LState) int {
	path := L.CheckString(1)
	_, err := os.Stat(path)
	L.Push(lua.LBool(err == nil))
	return 1
}

func isDir(L *lua.LState) int {
	path := L.CheckString(1)
	stat, err := os.Stat(path)
	L.Push(lua.LBool(err == nil && stat.IsDir()))
	return 1
}

// list_dir(path) returns sorted entry names, or nil and error message.
func listDir(L *lua.LState) int {
	path := L.CheckString(1)

	entries, err := os.ReadDir(path)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	tbl := L.NewTable()
	for i, entry := range entries {
		tbl.RawSetInt(i+1, lua.LString(entry.Name()))
	}
	L.Push(tbl)

	return 1
}

// read(path) returns file content, or nil and error message.
func read(L *lua.LState) int {
	path := L.CheckString(1)

	data, err := os.ReadFile(path)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	L.Push(lua.LString(data))

	return 1
}

func join(L *lua.LState) int {
	cnt := L.GetTop()
	parts := []string{}

	for i := 1; i <= cnt; i++ {
		parts = append(parts, L.CheckString(i))
	}

	result := filepath.Join(parts...)
	L.Push(lua.LString(result))

	return 1
}

func split(L *lua.LState) int {
	path := L.CheckString(1)
	dirname, basename := filepath.Split(path)
	L.Push(lua.LString(dirname))
	L.Push(lua.LString(basename))
	return 2
}

func splitExt(L *lua.LState) int {
	path := L.CheckString(1)
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	L.Push(lua.LString(stem))
	L.Push(lua.LString(ext))
	return 2
}

func dirname(L *lua.LState) int {
	path := L.CheckString(1)
	result := filepath.Dir(path)
	L.Push(lua.LString(result))
	return 1
}

func basename(L *lua.LState) int {
	path := L.CheckString(1)
	result := filepath.Base(path)
	L.Push(lua.LString(result))
	return 1
}

func ext(L *lua.LState) int {
	path := L.CheckString(1)
	result := filepath.Ext(path)
	L.Push(lua.LString(result))
	return 1
}
