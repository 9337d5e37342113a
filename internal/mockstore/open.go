package mockstore

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the slot named by driver. dsn is a directory for "file", a file
// path for "bolt" and "sqlite", and a connection string for "postgres".
func Open(driver, dsn string) (Slot, error) {
	switch driver {
	case DriverMemory:
		return NewMemSlot(), nil
	case DriverFile, "":
		if dsn == "" {
			dsn = "./data"
		}
		return NewFileSlot(dsn)
	case DriverBolt:
		if dsn == "" {
			dsn = "./data/products.bolt"
		}
		if err := ensureParent(dsn); err != nil {
			return nil, err
		}
		return NewBoltSlot(dsn)
	case DriverSQLite:
		if dsn == "" {
			dsn = "./data/products.db"
		}
		if err := ensureParent(dsn); err != nil {
			return nil, err
		}
		return NewSQLiteSlot(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres slot needs a dsn")
		}
		return NewPostgresSlot(dsn)
	default:
		return nil, fmt.Errorf("unknown mock store driver %q", driver)
	}
}

func ensureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
