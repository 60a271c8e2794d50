// Package services provides the ingest pipeline that ties validation,
// normalization and persistence together.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ortelius/cve-catalog/model"
	"github.com/ortelius/cve-catalog/normalize"
	"github.com/ortelius/cve-catalog/schema"
)

// CveStore persists advisory records.
type CveStore interface {
	UpsertCve(ctx context.Context, record *model.Cve) error
}

// ProductStore folds affected-product facts into the catalog.
type ProductStore interface {
	ReconcileProduct(ctx context.Context, cveID string, in model.AffectedProduct) error
}

// IngestService runs raw advisory documents through validate -> normalize
// -> store -> reconcile. Validation findings are reported but never block
// ingestion; persistence errors are isolated per product entry.
type IngestService struct {
	Validator *schema.Validator
	Cves      CveStore
	Products  ProductStore
	Logger    *zap.SugaredLogger
}

// IngestResult summarizes what happened to one document.
type IngestResult struct {
	CveID              string        `json:"cveId,omitempty"`
	Report             schema.Report `json:"report"`
	Stored             bool          `json:"stored"`
	ProductsReconciled int           `json:"productsReconciled"`
	ProductsSkipped    int           `json:"productsSkipped"`
	Errors             []string      `json:"errors,omitempty"`
}

// IngestDocument processes one raw JSON document. Malformed JSON is the
// only per-document fatal condition; everything after that is best-effort
// with failures collected into the result.
func (s *IngestService) IngestDocument(ctx context.Context, raw []byte) (*IngestResult, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	result := &IngestResult{
		Report: s.Validator.Validate(doc),
	}
	if !result.Report.Valid {
		s.Logger.Infow("document has validation findings",
			"violations", len(result.Report.Errors))
	}

	record := normalize.Record(doc)
	result.CveID = record.CveID

	if record.CveID == "" {
		result.Errors = append(result.Errors, "record has no cveId; not stored")
		return result, nil
	}

	if err := s.Cves.UpsertCve(ctx, record); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store record: %v", err))
		s.Logger.Errorw("failed to store record", "cveId", record.CveID, "error", err)
		return result, nil
	}
	result.Stored = true

	for _, affected := range record.AffectedProducts() {
		if skipAffected(affected) {
			result.ProductsSkipped++
			s.Logger.Warnw("affected entry without vendor or product skipped",
				"cveId", record.CveID)
			continue
		}
		if err := s.Products.ReconcileProduct(ctx, record.CveID, affected); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("reconcile %s/%s: %v", affected.Vendor, affected.Product, err))
			s.Logger.Errorw("failed to reconcile product",
				"cveId", record.CveID,
				"vendor", affected.Vendor,
				"product", affected.Product,
				"error", err)
			continue
		}
		result.ProductsReconciled++
	}

	return result, nil
}

// skipAffected filters entries that identify no product: empty values and
// the normalizer's placeholder both mean the advisory did not say.
func skipAffected(a model.AffectedProduct) bool {
	return a.Vendor == "" || a.Product == "" ||
		a.Vendor == normalize.DefaultVendor || a.Product == normalize.DefaultProduct
}

// BatchResult aggregates an IngestBatch run.
type BatchResult struct {
	Documents int `json:"documents"`
	Stored    int `json:"stored"`
	Invalid   int `json:"invalid"`
	Failed    int `json:"failed"`
}

// IngestBatch walks a DocumentSource with file-level parallelism. Outcomes
// do not depend on the worker count: all product-level write races are
// resolved in the store. A document that fails to parse is counted and
// logged, not fatal to the batch.
func (s *IngestService) IngestBatch(ctx context.Context, source DocumentSource, workers int) (*BatchResult, error) {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	type outcome struct {
		stored  bool
		invalid bool
		failed  bool
	}
	outcomes := make(chan outcome)
	done := make(chan BatchResult)

	go func() {
		var result BatchResult
		for o := range outcomes {
			result.Documents++
			if o.stored {
				result.Stored++
			}
			if o.invalid {
				result.Invalid++
			}
			if o.failed {
				result.Failed++
			}
		}
		done <- result
	}()

	walkErr := source.Walk(ctx, func(path string, raw []byte) error {
		g.Go(func() error {
			res, err := s.IngestDocument(ctx, raw)
			if err != nil {
				s.Logger.Errorw("document rejected", "path", path, "error", err)
				outcomes <- outcome{failed: true}
				return nil
			}
			outcomes <- outcome{
				stored:  res.Stored,
				invalid: !res.Report.Valid,
				failed:  len(res.Errors) > 0,
			}
			return nil
		})
		return nil
	})

	groupErr := g.Wait()
	close(outcomes)
	result := <-done

	if walkErr != nil {
		return &result, fmt.Errorf("walk source: %w", walkErr)
	}
	return &result, groupErr
}
