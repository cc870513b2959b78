// settings.go loads the optional acfileserver.jsonc settings file.
//
// The settings file is JSONC (JSON with Comments), so operators can keep an
// annotated config next to the binary. github.com/tidwall/jsonc strips
// comments and trailing commas before parsing with encoding/json.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"acfileserver/internal/model"
)

// SettingsFileName is the file name probed in the working directory.
const SettingsFileName = "acfileserver.jsonc"

// Settings is the raw structure of the settings file. Pointer fields
// distinguish "absent" from zero values so the file only overrides what it
// actually sets; unknown fields are silently ignored.
type Settings struct {
	// FilesDir overrides the shared directory path.
	FilesDir string `json:"filesDir,omitempty"`

	// StateDir overrides the state directory path.
	StateDir string `json:"stateDir,omitempty"`

	// Host overrides the listen address ("" = all interfaces).
	Host string `json:"host,omitempty"`

	// ShowQR toggles the startup QR code.
	ShowQR *bool `json:"showQr,omitempty"`

	// PageTitle overrides the public index heading.
	PageTitle string `json:"pageTitle,omitempty"`
}

// LoadSettings reads and parses a settings file. A missing file yields an
// empty Settings value, since the file is optional. A present but malformed
// file is a fatal configuration error: silently ignoring a typo'd config
// would serve with defaults the operator did not intend.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read settings file %s", path), err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas, then parse
	// with the standard library. encoding/json ignores unknown fields,
	// which keeps old binaries compatible with newer settings files.
	cleanJSON := jsonc.ToJSON(data)

	var s Settings
	if err := json.Unmarshal(cleanJSON, &s); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse settings file %s", path), err)
	}
	return &s, nil
}

// apply copies the set fields of s onto cfg, leaving everything else
// untouched.
func (s *Settings) apply(cfg *Config) {
	if s.FilesDir != "" {
		cfg.FilesDir = s.FilesDir
	}
	if s.StateDir != "" {
		cfg.StateDir = s.StateDir
	}
	if s.Host != "" {
		cfg.Host = s.Host
	}
	if s.ShowQR != nil {
		cfg.ShowQR = *s.ShowQR
	}
	if s.PageTitle != "" {
		cfg.PageTitle = s.PageTitle
	}
}
