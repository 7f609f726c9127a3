// Package obsconfig edits OBS Studio's INI configuration: enabling the
// websocket server in global.ini and installing the recording profile the
// controller launches OBS with.
package obsconfig

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"
)

// ProfileName is the OBS profile the controller installs and selects.
const ProfileName = "obs_controller"

//go:embed profile/basic.ini
var profileTemplate []byte

func init() {
	// OBS rejects keys written as "key = value"; match its own format.
	ini.PrettyFormat = false
}

// EnableWebSocket updates global.ini so the OBS websocket server is enabled
// on the given port with the given password. The file must already exist;
// OBS creates it on first run.
func EnableWebSocket(globalINI string, port int, password string) error {
	cfg, err := ini.Load(globalINI)
	if err != nil {
		return fmt.Errorf("load global.ini: %w", err)
	}

	sec := cfg.Section("OBSWebSocket")
	sec.Key("ServerEnabled").SetValue("true")
	sec.Key("ServerPort").SetValue(strconv.Itoa(port))
	sec.Key("ServerPassword").SetValue(password)

	if err := cfg.SaveTo(globalINI); err != nil {
		return fmt.Errorf("save global.ini: %w", err)
	}
	return nil
}

// InstallProfile writes the bundled recording profile under profilesDir with
// every output path pointed at videoDir, replacing any existing profile of
// the same name. It returns the installed profile directory.
func InstallProfile(profilesDir, videoDir string) (string, error) {
	cfg, err := ini.Load(profileTemplate)
	if err != nil {
		return "", fmt.Errorf("parse profile template: %w", err)
	}

	// OBS expects forward slashes in output paths on every platform.
	out := filepath.ToSlash(videoDir)
	cfg.Section("SimpleOutput").Key("FilePath").SetValue(out)
	cfg.Section("AdvOut").Key("RecFilePath").SetValue(out)
	cfg.Section("AdvOut").Key("FFFilePath").SetValue(out)

	dest := filepath.Join(profilesDir, ProfileName)
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("remove existing profile: %w", err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	if err := cfg.SaveTo(filepath.Join(dest, "basic.ini")); err != nil {
		return "", fmt.Errorf("write profile: %w", err)
	}
	return dest, nil
}
