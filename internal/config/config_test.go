package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Data.TemplateDir != "templates" {
		t.Errorf("expected template dir 'templates', got %s", cfg.Data.TemplateDir)
	}
	if cfg.Data.TemplatePack != "" {
		t.Errorf("expected empty template pack, got %s", cfg.Data.TemplatePack)
	}

	if cfg.Render.TextureWidth != 64 || cfg.Render.TextureHeight != 64 {
		t.Errorf("expected 64x64 texture, got %dx%d",
			cfg.Render.TextureWidth, cfg.Render.TextureHeight)
	}
	if cfg.Render.MaxScale != 8 {
		t.Errorf("expected max scale 8, got %d", cfg.Render.MaxScale)
	}

	if cfg.Server.Listen != "127.0.0.1:8570" {
		t.Errorf("expected listen 127.0.0.1:8570, got %s", cfg.Server.Listen)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestRenderConfigFormat(t *testing.T) {
	cfg := Default()
	f := cfg.Render.Format()

	if f.TextureWidth != cfg.Render.TextureWidth ||
		f.TextureHeight != cfg.Render.TextureHeight ||
		f.CanvasWidth != cfg.Render.CanvasWidth ||
		f.CanvasHeight != cfg.Render.CanvasHeight {
		t.Errorf("Format() does not match config: %+v vs %+v", f, cfg.Render)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
data:
  template_dir: /srv/templates
  template_pack: templates.pak

render:
  texture_width: 128
  texture_height: 128
  canvas_width: 1024
  canvas_height: 1664
  max_scale: 4

server:
  listen: ":9000"
  read_timeout: 5s
  write_timeout: 20s
  shutdown_timeout: 2s

logging:
  level: "debug"
  log_file: "skinforge.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Data.TemplateDir != "/srv/templates" {
		t.Errorf("expected template dir /srv/templates, got %s", cfg.Data.TemplateDir)
	}
	if cfg.Data.TemplatePack != "templates.pak" {
		t.Errorf("expected template pack templates.pak, got %s", cfg.Data.TemplatePack)
	}

	if cfg.Render.TextureWidth != 128 {
		t.Errorf("expected texture width 128, got %d", cfg.Render.TextureWidth)
	}
	if cfg.Render.CanvasHeight != 1664 {
		t.Errorf("expected canvas height 1664, got %d", cfg.Render.CanvasHeight)
	}
	if cfg.Render.MaxScale != 4 {
		t.Errorf("expected max scale 4, got %d", cfg.Render.MaxScale)
	}

	if cfg.Server.Listen != ":9000" {
		t.Errorf("expected listen :9000, got %s", cfg.Server.Listen)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "skinforge.log" {
		t.Errorf("expected log file 'skinforge.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
render:
  texture_width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "listen flag",
			setup: func() { *flagListen = ":7000" },
			verify: func(cfg *Config) {
				if cfg.Server.Listen != ":7000" {
					t.Errorf("expected listen :7000, got %s", cfg.Server.Listen)
				}
			},
			teardown: func() { *flagListen = "" },
		},
		{
			name:  "templates flag",
			setup: func() { *flagTemplates = "/opt/tpl" },
			verify: func(cfg *Config) {
				if cfg.Data.TemplateDir != "/opt/tpl" {
					t.Errorf("expected template dir /opt/tpl, got %s", cfg.Data.TemplateDir)
				}
			},
			teardown: func() { *flagTemplates = "" },
		},
		{
			name:  "pack flag",
			setup: func() { *flagPack = "a.pak" },
			verify: func(cfg *Config) {
				if cfg.Data.TemplatePack != "a.pak" {
					t.Errorf("expected template pack a.pak, got %s", cfg.Data.TemplatePack)
				}
			},
			teardown: func() { *flagPack = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  listen: ":8000"
logging:
  level: warn
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagListen = ":9999"
	defer func() {
		*flagConfig = ""
		*flagListen = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Listen comes from the flag, not the file.
	if cfg.Server.Listen != ":9999" {
		t.Errorf("expected listen :9999 from flag, got %s", cfg.Server.Listen)
	}
	// Level comes from the file since no flag overrides it.
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from file, got %s", cfg.Logging.Level)
	}
}
