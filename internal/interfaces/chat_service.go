package interfaces

import (
	"context"

	"github.com/ternarybob/mediascope/internal/models"
)

// ChatService answers questions about analyzed media items, grounding the
// answer on the latest analysis record
type ChatService interface {
	Ask(ctx context.Context, mediaID, question string) (*models.AskResponse, error)
	History(ctx context.Context, mediaID string) ([]*models.ChatMessage, error)

	// BuildContext assembles the grounding context for a media item from
	// its latest non-error analysis record. Returns an empty map when no
	// such record exists.
	BuildContext(ctx context.Context, mediaID string) (map[string]interface{}, error)
}
