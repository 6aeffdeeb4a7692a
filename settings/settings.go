package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SirZenith/kgebench/baseline"
	lua_fs "github.com/SirZenith/kgebench/lua_module/fs"
	lua "github.com/yuin/gopher-lua"
)

// Load returns model settings to benchmark. With empty script path, default
// settings are used. Otherwise given Lua script is executed and must return a
// list of setting tables, e.g.
//
//	local kb = require "kgebench"
//	return {
//	    kb.marginal(true, false),
//	    { model = "SoftInverseTriple", threshold = 0.2 },
//	}
//
// Global `default_settings` holds the default list, `script_dir` is directory
// of the script. Module `fs` provides read-only file system helpers.
func Load(scriptPath string) ([]baseline.Setting, error) {
	if scriptPath == "" {
		return baseline.DefaultSettings(), nil
	}

	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("failed to access settings script %s: %s", scriptPath, err)
	}

	L := lua.NewState()
	defer L.Close()

	if err := updateScriptImportPath(L, scriptPath); err != nil {
		return nil, err
	}

	L.PreloadModule("kgebench", Loader)
	L.PreloadModule("fs", lua_fs.Loader)

	L.SetGlobal("default_settings", ToTable(L, baseline.DefaultSettings()))
	L.SetGlobal("script_dir", lua.LString(filepath.Dir(scriptPath)))

	if err := L.DoFile(scriptPath); err != nil {
		return nil, fmt.Errorf("settings script executation error:\n%s", err)
	}

	tbl, ok := L.Get(1).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("settings script does not return a table")
	}

	return FromTable(tbl)
}

// FromTable converts a Lua list of setting tables.
func FromTable(tbl *lua.LTable) ([]baseline.Setting, error) {
	cnt := tbl.Len()
	if cnt == 0 {
		return nil, fmt.Errorf("settings list is empty")
	}

	result := make([]baseline.Setting, 0, cnt)
	for i := 1; i <= cnt; i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("setting %d is not a table", i)
		}

		setting, err := settingFromTable(entry)
		if err != nil {
			return nil, fmt.Errorf("setting %d: %s", i, err)
		}

		result = append(result, setting)
	}

	return result, nil
}

func settingFromTable(tbl *lua.LTable) (baseline.Setting, error) {
	setting := baseline.Setting{}

	model, ok := tbl.RawGetString("model").(lua.LString)
	if !ok {
		return setting, fmt.Errorf("`model` must be a string")
	}
	setting.Model = string(model)

	var err error
	if setting.EntityMargin, err = optionalBool(tbl, baseline.KeyEntityMargin); err != nil {
		return setting, err
	}
	if setting.RelationMargin, err = optionalBool(tbl, baseline.KeyRelationMargin); err != nil {
		return setting, err
	}

	switch value := tbl.RawGetString(baseline.KeyThreshold).(type) {
	case *lua.LNilType:
	case lua.LNumber:
		threshold := float64(value)
		setting.Threshold = &threshold
	default:
		return setting, fmt.Errorf("`%s` must be a number", baseline.KeyThreshold)
	}

	if setting.Model == baseline.ModelMarginalDistribution {
		yes := true
		if setting.EntityMargin == nil {
			setting.EntityMargin = &yes
		}
		if setting.RelationMargin == nil {
			setting.RelationMargin = &yes
		}
	}

	return setting, setting.Validate()
}

func optionalBool(tbl *lua.LTable, key string) (*bool, error) {
	switch value := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		b := bool(value)
		return &b, nil
	default:
		return nil, fmt.Errorf("`%s` must be a boolean", key)
	}
}

// ToTable converts settings into a Lua list of setting tables.
func ToTable(L *lua.LState, list []baseline.Setting) *lua.LTable {
	tbl := L.NewTable()
	for i, setting := range list {
		L.RawSetInt(tbl, i+1, settingToTable(L, setting))
	}
	return tbl
}

func settingToTable(L *lua.LState, setting baseline.Setting) *lua.LTable {
	tbl := L.NewTable()

	tbl.RawSetString("model", lua.LString(setting.Model))
	if setting.EntityMargin != nil {
		tbl.RawSetString(baseline.KeyEntityMargin, lua.LBool(*setting.EntityMargin))
	}
	if setting.RelationMargin != nil {
		tbl.RawSetString(baseline.KeyRelationMargin, lua.LBool(*setting.RelationMargin))
	}
	if setting.Threshold != nil {
		tbl.RawSetString(baseline.KeyThreshold, lua.LNumber(*setting.Threshold))
	}

	return tbl
}

func updateScriptImportPath(L *lua.LState, scriptPath string) error {
	pack, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("failed to retrive global variable `package`")
	}

	pathVal, ok := L.GetField(pack, "path").(lua.LString)
	if !ok {
		return fmt.Errorf("`path` field of `package` table is not a string")
	}

	path := string(pathVal)
	scriptDir := filepath.Dir(scriptPath)

	path += fmt.Sprintf(";%s/?.lua;%s/?/init.lua", scriptDir, scriptDir)
	L.SetField(pack, "path", lua.LString(path))

	return nil
}
