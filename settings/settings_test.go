package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SirZenith/kgebench/baseline"
)

func writeScript(t *testing.T, code string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.lua")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("failed to write script: %s", err)
	}

	return path
}

func TestLoadDefault(t *testing.T) {
	list, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(list) != len(baseline.DefaultSettings()) {
		t.Errorf("expecting default settings, got %d entries", len(list))
	}
}

func TestLoadScript(t *testing.T) {
	path := writeScript(t, `
		local kb = require "kgebench"
		return {
			kb.marginal(true, false),
			{ model = kb.SOFT_INVERSE_TRIPLE, threshold = 0.2 },
			{ model = "MarginalDistribution", relation_margin = false },
			kb.soft_inverse(),
		}
	`)

	list, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load script: %s", err)
	}

	got := []string{}
	for _, s := range list {
		got = append(got, s.String())
	}

	want := []string{
		`MarginalDistribution{"entity_margin": true, "relation_margin": false}`,
		`SoftInverseTriple{"threshold": 0.2}`,
		`MarginalDistribution{"entity_margin": true, "relation_margin": false}`,
		`SoftInverseTriple{"threshold": null}`,
	}

	if len(got) != len(want) {
		t.Fatalf("got %d settings, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("setting %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLoadScriptUsesDefaults(t *testing.T) {
	path := writeScript(t, `
		local result = {}
		for _, s in ipairs(default_settings) do
			if s.model == "SoftInverseTriple" then
				table.insert(result, s)
			end
		end
		return result
	`)

	list, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load script: %s", err)
	}
	if len(list) != 3 {
		t.Errorf("expecting 3 soft inverse settings, got %d", len(list))
	}
}

func TestLoadScriptReadsFile(t *testing.T) {
	path := writeScript(t, `
		local fs = require "fs"
		local content = fs.read(fs.join(script_dir, "thresholds.txt"))
		local result = {}
		for value in string.gmatch(content, "[^\n]+") do
			table.insert(result, { model = "SoftInverseTriple", threshold = tonumber(value) })
		end
		return result
	`)

	thresholds := filepath.Join(filepath.Dir(path), "thresholds.txt")
	if err := os.WriteFile(thresholds, []byte("0.2\n0.4\n"), 0o644); err != nil {
		t.Fatalf("failed to write thresholds: %s", err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load script: %s", err)
	}
	if len(list) != 2 || *list[0].Threshold != 0.2 || *list[1].Threshold != 0.4 {
		t.Errorf("unexpected settings %v", list)
	}
}

func TestLoadScriptInvalid(t *testing.T) {
	scripts := map[string]string{
		"not a table":   `return 42`,
		"empty":         `return {}`,
		"unknown model": `return { { model = "RESCAL" } }`,
		"bad margin":    `return { { model = "MarginalDistribution", entity_margin = "yes" } }`,
		"wrong kwarg":   `return { { model = "MarginalDistribution", threshold = 0.1 } }`,
		"syntax error":  `return {`,
	}

	for name, code := range scripts {
		if _, err := Load(writeScript(t, code)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}
