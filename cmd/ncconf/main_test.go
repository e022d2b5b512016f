package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/importer"
	"github.com/reoring/ncconf/source"
)

const legacyYAML = `
name: Legacy
x:
  steps_per_mm: 80
  step_pin: gpio.2
  direction_pin: gpio.5
pwm_pin: gpio.25
`

const pinsYAML = `
name: Pins
board: ESP32
io:
  probe_pin: gpio.4
  flood_pin: gpio.6
axes:
  x:
    motor0:
      step_pin: gpio.4
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// execute runs the root command with a config file that disables color.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := writeFile(t, t.TempDir(), "ncconf.yaml", "color: false\n")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestWriteReport(t *testing.T) {
	st := newStyles(false)

	var buf bytes.Buffer
	r := importer.Import(context.Background(), []byte(legacyYAML))
	assert.True(t, writeReport(&buf, "legacy.yaml", r, false, st))
	assert.Contains(t, buf.String(), "MIGRATE ")
	assert.Contains(t, buf.String(), "WARNING No board type specified")
	assert.Contains(t, buf.String(), "legacy.yaml: OK")

	buf.Reset()
	r = importer.Import(context.Background(), []byte(pinsYAML))
	assert.True(t, writeReport(&buf, "pins.yaml", r, false, st), "pin issues pass without strict")
	assert.Contains(t, buf.String(), "io.flood_pin: GPIO 6 is not available on ESP32")

	buf.Reset()
	assert.False(t, writeReport(&buf, "pins.yaml", r, true, st))
	assert.Contains(t, buf.String(), "pins.yaml: FAILED (0 issues, 2 pin issues, 0 advisories)")

	buf.Reset()
	r = importer.Import(context.Background(), []byte("axes: [unclosed\n"))
	assert.False(t, writeReport(&buf, "bad.yaml", r, false, st))
	assert.Contains(t, buf.String(), "bad.yaml: unreadable")
}

func TestToJSONReport(t *testing.T) {
	r := importer.Import(context.Background(), []byte(pinsYAML))
	jr, err := toJSONReport("pins.yaml", r)
	require.NoError(t, err)
	assert.Equal(t, "esp32", jr.Board)
	assert.True(t, jr.Success)
	assert.Contains(t, string(jr.PinConflicts), `"gpio.4":["io.probe_pin","axes.x.motor0.step_pin"]`)
	require.Len(t, jr.PinIssues, 2)
	assert.Equal(t, "io.flood_pin", jr.PinIssues[0].Path)
	assert.Equal(t, ncconf.CodeDomainRange, jr.PinIssues[0].Code)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, jr))
	assert.Contains(t, buf.String(), `"file": "pins.yaml"`)
}

func TestLoadBoards(t *testing.T) {
	dir := t.TempDir()

	tbl, err := loadBoards("")
	require.NoError(t, err)
	assert.Equal(t, 7, tbl.Len())

	tomlFile := writeFile(t, dir, "boards.toml", `
[[board]]
id = "custom"
name = "Custom Board"
pins = [
  { name = "GPIO1", gpio = 1, capabilities = { digital = true, input = true, output = true } },
]

[board.capabilities]
uart_channels = 1
`)
	tbl, err = loadBoards(tomlFile)
	require.NoError(t, err)
	assert.Equal(t, 8, tbl.Len())
	d, ok := tbl.Resolve("custom board")
	require.True(t, ok)
	assert.Equal(t, "custom", d.ID)

	jsonFile := writeFile(t, dir, "boards.json", `{"id": "j", "name": "J", "capabilities": {}, "pins": [{"name": "A", "gpio": -1}]}`)
	_, err = loadBoards(jsonFile)
	require.Error(t, err)
	iss, ok := ncconf.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, ncconf.CodeTooSmall, iss[0].Code)
	assert.Equal(t, "pins.0.gpio", iss[0].Path.String())

	_, err = loadBoards(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "reading boards file")
}

func TestExecute_Validate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "machine.yaml", legacyYAML)
	bad := writeFile(t, dir, "bad.yaml", "name: Bad\naxes:\n  x:\n    steps_per_mm: 0\n")

	got, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, got, good+": OK")

	got, err = execute(t, "validate", good, bad)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, got, bad+": FAILED")
	assert.Contains(t, got, "axes.x.steps_per_mm")
}

func TestExecute_StepsApply(t *testing.T) {
	file := writeFile(t, t.TempDir(), "machine.yaml", legacyYAML)

	got, err := execute(t, "steps", "--drive", "leadscrew", "--leadscrew-pitch", "8", "--apply", file, "--axis", "x")
	require.NoError(t, err)
	assert.Equal(t, "leadscrew: 400 steps/mm\n", got)

	doc, err := source.ReadFile(file)
	require.NoError(t, err)
	v := doc.Lookup(ncconf.ParsePath("axes.x.steps_per_mm"))
	n, ok := v.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 400.0, n)
	assert.True(t, doc.Get("x").IsAbsent(), "file is migrated on apply")
}

func TestExecute_PresetsAndDiff(t *testing.T) {
	dir := t.TempDir()
	before := filepath.Join(dir, "before.yaml")

	_, err := execute(t, "presets", "basic-3axis-router", "-o", before)
	require.NoError(t, err)
	doc, err := source.ReadFile(before)
	require.NoError(t, err)
	data, err := source.EncodeYAML(doc.SetPath(ncconf.ParsePath("axes.z.steps_per_mm"), document.Int(800)))
	require.NoError(t, err)
	after := writeFile(t, dir, "after.yaml", string(data))

	got, err := execute(t, "diff", before, after)
	require.NoError(t, err)
	assert.Equal(t, "~ axes.z.steps_per_mm: 400 -> 800\n", got)

	_, err = execute(t, "diff", "--exit-code", before, after)
	assert.ErrorIs(t, err, errFailed)
}

func TestExecute_Boards(t *testing.T) {
	got, err := execute(t, "boards", "esp32")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "ESP32 (esp32)\n"))
	assert.Contains(t, got, "gpio.34")
	assert.Contains(t, got, "input-only")

	_, err = execute(t, "boards", "arduino")
	assert.ErrorContains(t, err, `unknown board "arduino"`)
}

func TestExecute_Schema(t *testing.T) {
	got, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, got, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	assert.Contains(t, got, `"steps_per_mm"`)
}
