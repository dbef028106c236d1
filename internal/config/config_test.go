package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[game]
initial_scene = "basic"

[render]
backend = "headless"

[engine]
refresh_hook_caches = true
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.InitialScene != "basic" || cfg.Game.Title != "lumen" || cfg.Game.ResourcesDir != "resources" {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Render.Backend != "headless" || cfg.Render.Width != 80 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Physics.GravityY != 9.8 || cfg.Physics.VelocityIterations != 8 {
		t.Errorf("physics = %+v", cfg.Physics)
	}
	if !cfg.Engine.RefreshHookCaches || cfg.Audio.Channels != 50 || cfg.Logging.Level != "info" {
		t.Error("engine, audio or logging defaults")
	}
}

func TestLoadRequiresInitialScene(t *testing.T) {
	_, err := Load(writeConfig(t, "[game]\ntitle = \"x\"\n"))
	if err == nil || !strings.Contains(err.Error(), "initial_scene") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := Load(writeConfig(t, "[game\n")); err == nil {
		t.Error("broken toml accepted")
	}
}

func TestFrameInterval(t *testing.T) {
	cases := map[int]time.Duration{
		0:   time.Second / 60,
		-5:  time.Second / 60,
		30:  time.Second / 30,
		120: time.Second / 120,
	}
	for rate, want := range cases {
		if got := (RenderConfig{FrameRate: rate}).FrameInterval(); got != want {
			t.Errorf("FrameInterval(%d) = %v, want %v", rate, got, want)
		}
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "engine.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.InitialScene != "basic" {
		t.Errorf("initial scene = %q", cfg.Game.InitialScene)
	}
}
