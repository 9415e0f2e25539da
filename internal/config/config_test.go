package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestConfigPath(t *testing.T) {
	t.Run("environment override", func(t *testing.T) {
		want := filepath.Join(t.TempDir(), "custom.yaml")
		t.Setenv(EnvConfigPath, want)

		if got := ConfigPath(); got != want {
			t.Errorf("ConfigPath() = %s, want %s", got, want)
		}
	})

	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		want := "/custom/config/git-lab/config.yaml"
		if got := ConfigPath(); got != want {
			t.Errorf("ConfigPath() = %s, want %s", got, want)
		}
	})
}

func TestConfigSaveLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	original := DefaultConfig()
	original.InitTime = time.Now().Unix()
	original.SetInstance("invent.kde.org", Instance{HasToken: true})
	original.SetInstance("gitlab.example.com", Instance{AuthCommand: "pass show gitlab"})

	if err := original.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %s", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %s", err)
	}

	if loaded.Version != original.Version {
		t.Errorf("Version mismatch: expected %s, got %s", original.Version, loaded.Version)
	}
	if loaded.InitTime != original.InitTime {
		t.Errorf("InitTime mismatch: expected %d, got %d", original.InitTime, loaded.InitTime)
	}

	inst, ok := loaded.Instance("gitlab.example.com")
	if !ok || inst.AuthCommand != "pass show gitlab" {
		t.Errorf("Instance(gitlab.example.com) = %+v, %v", inst, ok)
	}
	inst, ok = loaded.Instance("invent.kde.org")
	if !ok || !inst.HasToken {
		t.Errorf("Instance(invent.kde.org) = %+v, %v", inst, ok)
	}

	if loaded.Path() != configPath {
		t.Errorf("Path() = %s, want %s", loaded.Path(), configPath)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(EnvConfigPath, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.Instances) != 0 {
		t.Errorf("Load() on missing file returned instances: %+v", cfg.Instances)
	}

	cfg.SetInstance("invent.kde.org", Instance{HasToken: true})
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("Save() did not create %s: %v", configPath, err)
	}

	again, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if _, ok := again.Instance("invent.kde.org"); !ok {
		t.Error("Load() lost the saved instance")
	}
}

func TestConfigInitTime(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()

	before := time.Now().Unix()
	if err := config.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %s", err)
	}
	after := time.Now().Unix()

	if config.InitTime < before || config.InitTime > after {
		t.Errorf("InitTime %d should be between %d and %d", config.InitTime, before, after)
	}
}

func TestConfigFilePermissions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()
	if err := config.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %s", err)
	}

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %s", err)
	}

	mode := fileInfo.Mode()
	if mode&0o077 != 0 {
		t.Errorf("Config file should not be readable by group/others, got mode %o", mode)
	}
}

func TestHostsAndRemove(t *testing.T) {
	config := DefaultConfig()
	config.SetInstance("b.example.com", Instance{HasToken: true})
	config.SetInstance("a.example.com", Instance{AuthCommand: "echo t"})

	hosts := config.Hosts()
	if len(hosts) != 2 || hosts[0] != "a.example.com" || hosts[1] != "b.example.com" {
		t.Errorf("Hosts() = %v, want sorted [a.example.com b.example.com]", hosts)
	}

	config.RemoveInstance("a.example.com")
	if _, ok := config.Instance("a.example.com"); ok {
		t.Error("RemoveInstance() did not remove host")
	}

	var empty Config
	empty.SetInstance("c.example.com", Instance{})
	if _, ok := empty.Instance("c.example.com"); !ok {
		t.Error("SetInstance() on zero Config should allocate the map")
	}
}

// Error handling tests
func TestConfigErrorHandling(t *testing.T) {
	t.Run("load non-existent file", func(t *testing.T) {
		_, err := LoadFrom("/non/existent/file.yaml")
		if err == nil {
			t.Error("Should error when loading non-existent file")
		}
	})

	t.Run("load invalid YAML", func(t *testing.T) {
		invalidFile := filepath.Join(t.TempDir(), "invalid.yaml")
		os.WriteFile(invalidFile, []byte("invalid: yaml: content: ["), 0o644)

		_, err := LoadFrom(invalidFile)
		if err == nil {
			t.Error("Should error when loading invalid YAML")
		}
	})

	t.Run("save to read-only directory", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("Skipping test as root user")
		}

		config := DefaultConfig()
		err := config.SaveTo("/root/config.yaml")
		if err == nil {
			t.Error("Should error when saving to read-only directory")
		}
	})
}
