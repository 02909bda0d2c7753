package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	media   interfaces.MediaStorage
	result  interfaces.ResultStorage
	segment interfaces.SegmentStorage
	chat    interfaces.ChatStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		media:   NewMediaStorage(db, logger),
		result:  NewResultStorage(db, logger),
		segment: NewSegmentStorage(db, logger),
		chat:    NewChatStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// MediaStorage returns the Media storage interface
func (m *Manager) MediaStorage() interfaces.MediaStorage {
	return m.media
}

// ResultStorage returns the StageResult storage interface
func (m *Manager) ResultStorage() interfaces.ResultStorage {
	return m.result
}

// SegmentStorage returns the TranscriptSegment storage interface
func (m *Manager) SegmentStorage() interfaces.SegmentStorage {
	return m.segment
}

// ChatStorage returns the ChatMessage storage interface
func (m *Manager) ChatStorage() interfaces.ChatStorage {
	return m.chat
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
