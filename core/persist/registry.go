package persist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/navbus/navbus/core/factory"
)

var storeRegistry = factory.NewRegistry[Store]()

type fileConf struct {
	Path string `json:"path"`
}

type rotatingConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func init() {
	storeRegistry.MustRegister("jsonl", func(conf map[string]any) (Store, error) {
		var c fileConf
		if err := decodePath(conf, &c, &c.Path); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	storeRegistry.MustRegister("rotating_jsonl", func(conf map[string]any) (Store, error) {
		c := rotatingConf{MaxSizeMB: 10, MaxBackups: 5}
		if err := decodePath(conf, &c, &c.Path); err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	storeRegistry.MustRegister("sqlite", func(conf map[string]any) (Store, error) {
		var c fileConf
		if err := decodePath(conf, &c, &c.Path); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

func decodePath(conf map[string]any, out any, path *string) error {
	if err := factory.Decode(conf, out); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// StoreTypes lists the registered store types.
func StoreTypes() []string { return storeRegistry.Names() }

// NewStore creates a Store from the provided configuration.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	return storeRegistry.Create(cfg)
}

// Open opens an existing store file, guessing the backend from its
// extension: .db, .sqlite and .sqlite3 are SQLite databases, anything else
// is read as JSONL.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONLStore(path)
	}
}
