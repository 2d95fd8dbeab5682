// Package settings holds the user toggles consulted when rendering, searching
// and creating signatures. A Settings value is passed around explicitly and
// never mutated while an operation runs.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type Settings struct {
	AutoJumpToFound       bool `json:"autoJumpToFound" jsonschema:"title=Auto jump,description=Focus the first address found by a search"`
	UseSelectedRange      bool `json:"useSelectedRange" jsonschema:"title=Use selected range,description=Build the signature from the selected range instead of growing it"`
	ShowMnemonics         bool `json:"showMnemonics" jsonschema:"title=Show mnemonics,description=Report each instruction mnemonic while a signature grows"`
	CopyToClipboard       bool `json:"copyToClipboard" jsonschema:"title=Copy to clipboard,description=Copy created signatures to the system clipboard"`
	IncludeMask           bool `json:"includeMask" jsonschema:"title=Include mask,description=Append an xx?? mask to CODE style signatures"`
	AllowDangerousRegions bool `json:"allowDangerousRegions" jsonschema:"title=Allow dangerous regions,description=Allow signatures outside recognized code"`
	StopAtFirst           bool `json:"stopAtFirst" jsonschema:"title=Stop at first,description=Stop searching after the first match"`
	UseDoubleWildcard     bool `json:"useDoubleWildcard" jsonschema:"title=Double wildcard,description=Render IDA style wildcards as ??"`
	UseAltWildcard        bool `json:"useAltWildcard" jsonschema:"title=Alternate wildcard,description=Render CODE style wildcards as 2A instead of 00"`
}

func Default() Settings {
	return Settings{
		AutoJumpToFound:  true,
		UseSelectedRange: true,
		ShowMnemonics:    true,
		CopyToClipboard:  true,
	}
}

// DefaultPath is where the settings file lives unless overridden.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sigmaker.json"
	}
	return filepath.Join(dir, "sigmaker", "settings.json")
}

// Load overlays the JSON file at path onto the defaults. A missing file is
// not an error.
func Load(path string) (Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		return Default(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
