// Package manifest загружает multrait.toml: декларации extern-типов с их
// сигнатурами умножения и литеральные правила-расширения таблицы.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName — имя файла манифеста, которое ищется вверх по дереву каталогов.
const FileName = "multrait.toml"

// Config is the decoded shape of multrait.toml.
type Config struct {
	Package PackageConfig  `toml:"package"`
	Externs []ExternConfig `toml:"extern"`
	Rules   []RuleConfig   `toml:"rule"`
}

// PackageConfig names the extension set.
type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// ExternConfig declares one opaque extern type together with its
// multiplication signatures.
type ExternConfig struct {
	Name string      `toml:"name"`
	Mult []SigConfig `toml:"mult"`
}

// SigConfig is one declared signature: extern * rhs -> result.
// Commutative signatures also match with the extern on the right.
type SigConfig struct {
	Rhs         string `toml:"rhs"`
	Result      string `toml:"result"`
	Commutative bool   `toml:"commutative"`
}

// RuleConfig is a literal extension rule: left * right -> result.
// Literal rules outrank the builtin families.
type RuleConfig struct {
	Left   string `toml:"left"`
	Right  string `toml:"right"`
	Result string `toml:"result"`
}

// Manifest is a loaded multrait.toml plus its location on disk.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir to locate multrait.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and structurally validates a manifest file. Type labels are
// not parsed here: that happens in Apply, against a concrete interner.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	for i, ext := range cfg.Externs {
		if strings.TrimSpace(ext.Name) == "" {
			return nil, fmt.Errorf("%s: [[extern]] #%d: missing name", path, i+1)
		}
		for j, sig := range ext.Mult {
			if strings.TrimSpace(sig.Rhs) == "" {
				return nil, fmt.Errorf("%s: extern %q mult #%d: missing rhs", path, ext.Name, j+1)
			}
			if strings.TrimSpace(sig.Result) == "" {
				return nil, fmt.Errorf("%s: extern %q mult #%d: missing result", path, ext.Name, j+1)
			}
		}
	}
	for i, rule := range cfg.Rules {
		if strings.TrimSpace(rule.Left) == "" || strings.TrimSpace(rule.Right) == "" || strings.TrimSpace(rule.Result) == "" {
			return nil, fmt.Errorf("%s: [[rule]] #%d: left, right and result are required", path, i+1)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(abs),
		Config: cfg,
	}, nil
}

// Discover locates and loads the nearest manifest above startDir.
// A missing manifest is not an error: ok=false and a nil manifest.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}
