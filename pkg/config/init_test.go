package config

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestInitConfig_Success(t *testing.T) {
	setTestConfigDir(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	contentStr := string(content)
	expectedSections := []string{
		"# razmount Configuration File",
		"logging:",
		"mount:",
		"remote:",
		"cache:",
		"hydration:",
		"metrics:",
	}
	for _, section := range expectedSections {
		if !strings.Contains(contentStr, section) {
			t.Errorf("config file missing section: %s", section)
		}
	}

	// The template must parse and load back through the normal path.
	var probe map[string]any
	if err := yaml.Unmarshal(content, &probe); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if _, err := Load(configPath); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
}

func TestInitConfig_ExistingFile(t *testing.T) {
	setTestConfigDir(t)

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("first InitConfig failed: %v", err)
	}

	if _, err := InitConfig(false); err == nil {
		t.Fatal("expected error when config already exists")
	}

	if _, err := InitConfig(true); err != nil {
		t.Fatalf("InitConfig with force failed: %v", err)
	}
}

func TestInitConfig_FilePermissions(t *testing.T) {
	setTestConfigDir(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	// The file can hold credentials; keep it private.
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}
