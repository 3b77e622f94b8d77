package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"mp3tool/internal/metadata"
)

const (
	// DefaultSettingsFile is read from the working directory when no path is configured.
	DefaultSettingsFile = "config.ini"
	// ReadTagsSection lists the tags shown by read-tags.
	ReadTagsSection = "readTags"

	defaultRefreshDebounceMS = 500
)

// ErrSettingsNotFound is returned when the settings file does not exist.
var ErrSettingsNotFound = errors.New("settings file not found")

// Settings is the immutable configuration shared by the commands.
type Settings struct {
	Path            string
	ReadTags        []metadata.Name
	RefreshDebounce time.Duration
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ResolveSettingsPath returns the absolute path of the settings file. An empty
// path selects DefaultSettingsFile in the working directory.
func ResolveSettingsPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultSettingsFile
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// RefreshDebounce returns the delay between a file change and the refresh
// of a watched table.
func RefreshDebounce() time.Duration {
	value := strings.TrimSpace(os.Getenv("MP3TOOL_REFRESH_DEBOUNCE_MS"))
	if value == "" {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}

	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// Load reads the settings file at path. Files ending in .yaml or .yml are
// parsed as YAML, anything else as INI.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return Settings{}, err
	}

	var entries []toggle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = parseYAML(data)
	default:
		entries, err = parseINI(data)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}

	tags, err := enabledTags(entries)
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return Settings{
		Path:            path,
		ReadTags:        tags,
		RefreshDebounce: RefreshDebounce(),
	}, nil
}

type toggle struct {
	key     string
	enabled bool
}

func parseINI(data []byte) ([]toggle, error) {
	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, data)
	if err != nil {
		return nil, err
	}

	section, err := file.GetSection(ReadTagsSection)
	if err != nil {
		return nil, fmt.Errorf("missing [%s] section", ReadTagsSection)
	}

	keys := section.Keys()
	entries := make([]toggle, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, toggle{key: key.Name(), enabled: key.String() == "yes"})
	}
	return entries, nil
}

func parseYAML(data []byte) ([]toggle, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("expected a mapping at the top level")
	}

	root := doc.Content[0]
	var section *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == ReadTagsSection {
			section = root.Content[i+1]
			break
		}
	}
	if section == nil {
		return nil, fmt.Errorf("missing %s mapping", ReadTagsSection)
	}
	if section.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s must be a mapping", ReadTagsSection)
	}

	entries := make([]toggle, 0, len(section.Content)/2)
	for i := 0; i+1 < len(section.Content); i += 2 {
		key, value := section.Content[i], section.Content[i+1]
		enabled := value.Value == "yes"
		if value.Tag == "!!bool" {
			var b bool
			if err := value.Decode(&b); err != nil {
				return nil, fmt.Errorf("%s: %w", key.Value, err)
			}
			enabled = b
		}
		entries = append(entries, toggle{key: strings.ToLower(key.Value), enabled: enabled})
	}
	return entries, nil
}

// enabledTags validates every key against the tag vocabulary and keeps the
// enabled ones in file order.
func enabledTags(entries []toggle) ([]metadata.Name, error) {
	var tags []metadata.Name
	seen := make(map[metadata.Name]struct{}, len(entries))
	for _, entry := range entries {
		name, err := metadata.Lookup(entry.key)
		if err != nil {
			return nil, err
		}
		if !entry.enabled {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags, nil
}
