package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// ErrNoPreferences is returned by Load before anything has been saved.
var ErrNoPreferences = errors.New("store: no preferences saved")

const preferencesKey = "preferences.json"

// Preferences are client-side view settings that survive restarts.
type Preferences struct {
	ActiveOnly bool `json:"active_only"`
	ShowEvents bool `json:"show_events"`
}

// Persistence stores Preferences and streams changes made by other processes.
type Persistence interface {
	Load() (Preferences, error)
	LoadOrDefault() Preferences
	Save(p Preferences) error
	Path() string
	Watch(ctx context.Context) (<-chan Preferences, error)
}

// Load opens the preference store described by cfg. A nil cfg is resolved
// with LoadConfig.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.PrefsPath()
	if basePath == "" {
		return nil, errors.New("store: prefs path unknown")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// No read cache: another process may rewrite the file underneath us.
		CacheSizeMax: 0,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) Path() string { return p.basePath }

func (p *persistence) Load() (Preferences, error) {
	if !p.d.Has(preferencesKey) {
		return Preferences{}, ErrNoPreferences
	}
	val, err := p.d.Read(preferencesKey)
	if err != nil {
		return Preferences{}, fmt.Errorf("store: read preferences: %w", err)
	}
	var prefs Preferences
	if err := json.Unmarshal(val, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("store: decode preferences: %w", err)
	}
	return prefs, nil
}

func (p *persistence) LoadOrDefault() Preferences {
	prefs, err := p.Load()
	if err != nil && !errors.Is(err, ErrNoPreferences) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", preferencesKey, err)
	}
	return prefs
}

func (p *persistence) Save(prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := p.d.Write(preferencesKey, data); err != nil {
		return fmt.Errorf("store: write preferences: %w", err)
	}
	return nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{FileName: s}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
