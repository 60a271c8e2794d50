package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/cenkalti/backoff"

	"github.com/ortelius/cve-catalog/model"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// ArangoDB error codes that mean "retry the write": write-write conflict
// and unique constraint violation from a concurrent insert.
const (
	errArangoConflict         = 1200
	errArangoUniqueConstraint = 1210
)

func isRetryableWrite(err error) bool {
	return shared.IsArangoErrorWithCode(err, errArangoConflict) ||
		shared.IsArangoErrorWithCode(err, errArangoUniqueConstraint)
}

// retryWrite runs op with a short exponential backoff, retrying only the
// conflict classes concurrent writers produce.
func retryWrite(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := op()
		if err == nil {
			return nil
		}
		if isRetryableWrite(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}

// UpsertCve stores an advisory record keyed by its CVE ID. Re-ingestion
// deep-merges into the stored document: fields absent from the payload keep
// their stored values, an explicit null removes the field, and arrays
// present in the payload replace wholesale.
func (db DBConnection) UpsertCve(ctx context.Context, record *model.Cve) error {
	if record == nil || record.CveID == "" {
		return fmt.Errorf("upsert cve: record has no cve_id")
	}

	doc, err := toDocument(record)
	if err != nil {
		return fmt.Errorf("upsert cve %s: %w", record.CveID, err)
	}
	delete(doc, "_key")

	query := `
		UPSERT { cve_id: @cveId }
		INSERT @doc
		UPDATE @doc IN cves
		OPTIONS { mergeObjects: true, keepNull: false }
	`

	bindVars := map[string]interface{}{
		"cveId": record.CveID,
		"doc":   doc,
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

// GetCve returns the stored advisory record, or ErrNotFound.
func (db DBConnection) GetCve(ctx context.Context, cveID string) (*model.Cve, error) {
	query := `
		FOR c IN cves
			FILTER c.cve_id == @cveId
			LIMIT 1
			RETURN c
	`

	bindVars := map[string]interface{}{
		"cveId": cveID,
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

	var record model.Cve
	if _, err := cursor.ReadDocument(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// toDocument converts a struct to the map shape AQL bind vars need, going
// through JSON so omitempty and field names apply.
func toDocument(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
