package obsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/ini.v1"
)

func TestEnableWebSocket(t *testing.T) {
	t.Run("updates_server_settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "global.ini")
		// OBS writes global.ini with a UTF-8 BOM.
		content := "\ufeff[General]\nFirstRun=false\n\n[OBSWebSocket]\nServerEnabled=false\nServerPort=4444\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := EnableWebSocket(path, 4455, "hunter2"); err != nil {
			t.Fatalf("EnableWebSocket: %v", err)
		}

		cfg, err := ini.Load(path)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		sec := cfg.Section("OBSWebSocket")
		if got := sec.Key("ServerEnabled").String(); got != "true" {
			t.Errorf("ServerEnabled: got %q, want true", got)
		}
		if got := sec.Key("ServerPort").String(); got != "4455" {
			t.Errorf("ServerPort: got %q, want 4455", got)
		}
		if got := sec.Key("ServerPassword").String(); got != "hunter2" {
			t.Errorf("ServerPassword: got %q", got)
		}
		// Unrelated sections survive the rewrite.
		if got := cfg.Section("General").Key("FirstRun").String(); got != "false" {
			t.Errorf("General.FirstRun: got %q, want false", got)
		}
	})

	t.Run("missing_file_is_an_error", func(t *testing.T) {
		err := EnableWebSocket(filepath.Join(t.TempDir(), "nope.ini"), 4455, "x")
		if err == nil {
			t.Error("expected error for missing global.ini")
		}
	})
}

func TestInstallProfile(t *testing.T) {
	t.Run("writes_profile_with_video_dir", func(t *testing.T) {
		profilesDir := t.TempDir()

		dest, err := InstallProfile(profilesDir, "/srv/replays")
		if err != nil {
			t.Fatalf("InstallProfile: %v", err)
		}
		if dest != filepath.Join(profilesDir, ProfileName) {
			t.Errorf("dest: got %s", dest)
		}

		cfg, err := ini.Load(filepath.Join(dest, "basic.ini"))
		if err != nil {
			t.Fatalf("load installed profile: %v", err)
		}
		for _, key := range []struct{ section, key string }{
			{"SimpleOutput", "FilePath"},
			{"AdvOut", "RecFilePath"},
			{"AdvOut", "FFFilePath"},
		} {
			got := cfg.Section(key.section).Key(key.key).String()
			if got != "/srv/replays" {
				t.Errorf("%s.%s: got %q, want /srv/replays", key.section, key.key, got)
			}
		}
		if got := cfg.Section("SimpleOutput").Key("RecRB").String(); got != "true" {
			t.Errorf("replay buffer should be enabled in the profile, RecRB=%q", got)
		}
	})

	t.Run("replaces_existing_profile", func(t *testing.T) {
		profilesDir := t.TempDir()
		dest := filepath.Join(profilesDir, ProfileName)
		if err := os.MkdirAll(dest, 0o755); err != nil {
			t.Fatal(err)
		}
		stray := filepath.Join(dest, "stray.txt")
		if err := os.WriteFile(stray, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := InstallProfile(profilesDir, "/srv/replays"); err != nil {
			t.Fatalf("InstallProfile: %v", err)
		}
		if _, err := os.Stat(stray); !os.IsNotExist(err) {
			t.Errorf("existing profile contents should be replaced, stat err=%v", err)
		}
	})
}
