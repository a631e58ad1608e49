// Package storage selects and constructs the configured storage backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/storage/badger"
	"github.com/corelabs/core/internal/storage/surrealdb"
)

// Driver constants.
const (
	DriverBadger    = "badger"
	DriverSurrealDB = "surrealdb"
)

// NewManager creates a StorageManager for the configured driver.
// Supported drivers: "badger" (default, embedded) and "surrealdb".
func NewManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	driver := strings.ToLower(config.Storage.Driver)
	if driver == "" {
		driver = DriverBadger
	}

	switch driver {
	case DriverBadger:
		return badger.NewManager(logger, config)

	case DriverSurrealDB:
		return surrealdb.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: badger, surrealdb)", driver)
	}
}
