package validate

import (
	"fmt"
	"path/filepath"
)

// StorageConfig represents the storage section for validation purposes.
type StorageConfig struct {
	Backend    string
	Path       string
	RqliteDSN  string
	OlricAddrs []string
	OlricDMap  string
}

// ValidateStorage checks that the selected backend has what it needs to open.
func ValidateStorage(sc StorageConfig) []error {
	var errs []error

	switch sc.Backend {
	case "memory":
	case "sqlite":
		if sc.Path == "" {
			errs = append(errs, ValidationError{
				Path:    "storage.path",
				Message: "must not be empty for the sqlite backend",
				Hint:    "e.g. ~/.smartgw/store.db",
			})
		} else if err := ValidateDataDir(filepath.Dir(sc.Path)); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.path",
				Message: err.Error(),
			})
		}
	case "badger":
		if err := ValidateDataDir(sc.Path); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.path",
				Message: err.Error(),
				Hint:    "badger needs a writable directory",
			})
		}
	case "rqlite":
		if err := ValidateHTTPURL(sc.RqliteDSN); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.rqlite_dsn",
				Message: err.Error(),
				Hint:    "e.g. http://localhost:5001",
			})
		}
	case "olric":
		if len(sc.OlricAddrs) == 0 {
			errs = append(errs, ValidationError{
				Path:    "storage.olric_servers",
				Message: "must not be empty for the olric backend",
			})
		}
		for i, addr := range sc.OlricAddrs {
			if err := ValidateHostPort(addr); err != nil {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("storage.olric_servers[%d]", i),
					Message: err.Error(),
				})
			}
		}
		if sc.OlricDMap == "" {
			errs = append(errs, ValidationError{
				Path:    "storage.olric_dmap",
				Message: "must not be empty for the olric backend",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Path:    "storage.backend",
			Message: fmt.Sprintf("invalid value %q", sc.Backend),
			Hint:    "allowed values: memory, sqlite, rqlite, olric, badger",
		})
	}

	return errs
}
