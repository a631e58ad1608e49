package badger

import (
	"fmt"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
)

// Manager implements interfaces.StorageManager on one embedded BadgerHold
// database shared by all stores.
type Manager struct {
	store     *Store
	logger    *common.Logger
	internal  *internalStore
	portfolio *portfolioStore
	snapshot  *snapshotStore
}

// NewManager opens the database at config.Storage.Path and wires the stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger storage: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Badger storage manager initialized")

	return &Manager{
		store:     store,
		logger:    logger,
		internal:  newInternalStore(store, logger),
		portfolio: newPortfolioStore(store, logger),
		snapshot:  newSnapshotStore(store, logger),
	}, nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolio
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshot
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
