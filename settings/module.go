package settings

import (
	"github.com/SirZenith/kgebench/baseline"
	lua "github.com/yuin/gopher-lua"
)

// Loader opens the `kgebench` Lua module.
func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), exports)

	mod.RawSetString("MARGINAL_DISTRIBUTION", lua.LString(baseline.ModelMarginalDistribution))
	mod.RawSetString("SOFT_INVERSE_TRIPLE", lua.LString(baseline.ModelSoftInverseTriple))

	L.Push(mod)

	return 1
}

var exports = map[string]lua.LGFunction{
	"marginal":     luaMarginal,
	"soft_inverse": luaSoftInverse,
	"defaults":     luaDefaults,
}

// marginal(entity_margin?, relation_margin?), both default to true.
func luaMarginal(L *lua.LState) int {
	entityMargin := L.OptBool(1, true)
	relationMargin := L.OptBool(2, true)

	L.Push(settingToTable(L, baseline.Marginal(entityMargin, relationMargin)))

	return 1
}

// soft_inverse(threshold?), nil threshold keeps all similarities.
func luaSoftInverse(L *lua.LState) int {
	var setting baseline.Setting
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		threshold := float64(L.CheckNumber(1))
		setting = baseline.SoftInverse(&threshold)
	} else {
		setting = baseline.SoftInverse(nil)
	}

	L.Push(settingToTable(L, setting))

	return 1
}

func luaDefaults(L *lua.LState) int {
	L.Push(ToTable(L, baseline.DefaultSettings()))
	return 1
}
