package database

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
)

// SyncState records where a document source left off, so unchanged runs
// can be skipped. For git sources Cursor is the last ingested commit hash.
type SyncState struct {
	Source   string `json:"source"`
	Cursor   string `json:"cursor"`
	SyncedAt string `json:"synced_at,omitempty"`
}

// GetSyncState returns the stored state for a source, or ErrNotFound on
// the first run.
func (db DBConnection) GetSyncState(ctx context.Context, source string) (*SyncState, error) {
	query := `
		FOR s IN sync
			FILTER s.source == @source
			LIMIT 1
			RETURN s
	`

	bindVars := map[string]interface{}{
		"source": source,
	}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, ErrNotFound
	}

	var state SyncState
	if _, err := cursor.ReadDocument(ctx, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveSyncState upserts the state for a source.
func (db DBConnection) SaveSyncState(ctx context.Context, state SyncState) error {
	query := `
		UPSERT { source: @source }
		INSERT { source: @source, cursor: @cursor, synced_at: DATE_ISO8601(DATE_NOW()) }
		UPDATE { cursor: @cursor, synced_at: DATE_ISO8601(DATE_NOW()) } IN sync
	`

	bindVars := map[string]interface{}{
		"source": state.Source,
		"cursor": state.Cursor,
	}

	return retryWrite(ctx, func() error {
		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return err
		}
		return cursor.Close()
	})
}
