package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ortelius/cve-catalog/model"
	"github.com/ortelius/cve-catalog/schema"
)

// memoryStore implements CveStore and ProductStore with the same merge
// semantics the database layer runs server-side.
type memoryStore struct {
	mu       sync.Mutex
	cves     map[string]*model.Cve
	products map[string]*model.Product
	cveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		cves:     make(map[string]*model.Cve),
		products: make(map[string]*model.Product),
	}
}

func (m *memoryStore) UpsertCve(_ context.Context, record *model.Cve) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cveErr != nil {
		return m.cveErr
	}
	m.cves[record.CveID] = record
	return nil
}

func (m *memoryStore) ReconcileProduct(_ context.Context, cveID string, in model.AffectedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := in.Vendor + "/" + in.Product
	p, ok := m.products[key]
	if !ok {
		p = model.NewProduct(in)
		m.products[key] = p
	} else {
		p.Merge(in)
	}
	p.AddCveReference(cveID)
	return nil
}

func (m *memoryStore) product(vendor, product string) *model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[vendor+"/"+product]
}

func newTestService(store *memoryStore) *IngestService {
	return &IngestService{
		Validator: schema.NewValidator(schema.NewRegistry()),
		Cves:      store,
		Products:  store,
		Logger:    zap.NewNop().Sugar(),
	}
}

func advisory(cveID, vendor, product, version string) []byte {
	doc := map[string]any{
		"dataType":    "CVE_RECORD",
		"dataVersion": "5.1.1",
		"cveMetadata": map[string]any{
			"cveId":         cveID,
			"assignerOrgId": "550e8400-e29b-41d4-a716-446655440000",
			"state":         "PUBLISHED",
		},
		"containers": map[string]any{
			"cna": map[string]any{
				"providerMetadata": map[string]any{
					"orgId": "550e8400-e29b-41d4-a716-446655440000",
				},
				"descriptions": []any{
					map[string]any{"lang": "en", "value": "A vulnerability."},
				},
				"affected": []any{
					map[string]any{
						"vendor":  vendor,
						"product": product,
						"versions": []any{
							map[string]any{
								"version":     version,
								"status":      "affected",
								"versionType": "semver",
							},
						},
					},
				},
				"references": []any{
					map[string]any{"url": "https://example.com/advisory"},
				},
			},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestIngestDocument(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	res, err := svc.IngestDocument(context.Background(), advisory("CVE-2024-1000", "Acme", "Widget", "1.0.0"))
	require.NoError(t, err)

	assert.Equal(t, "CVE-2024-1000", res.CveID)
	assert.True(t, res.Report.Valid)
	assert.True(t, res.Stored)
	assert.Equal(t, 1, res.ProductsReconciled)
	assert.Zero(t, res.ProductsSkipped)
	assert.Empty(t, res.Errors)

	require.Contains(t, store.cves, "CVE-2024-1000")
	p := store.product("Acme", "Widget")
	require.NotNil(t, p)
	assert.Equal(t, []string{"CVE-2024-1000"}, p.Cves)
}

func TestIngestDocumentInvalidStillStored(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	raw := []byte(`{"cveMetadata": {"cveId": "CVE-2024-1001"}}`)
	res, err := svc.IngestDocument(context.Background(), raw)
	require.NoError(t, err)

	assert.False(t, res.Report.Valid)
	assert.NotEmpty(t, res.Report.Errors)
	// Validation findings never block ingestion.
	assert.True(t, res.Stored)
	require.Contains(t, store.cves, "CVE-2024-1001")
}

func TestIngestDocumentMalformedJSON(t *testing.T) {
	svc := newTestService(newMemoryStore())

	res, err := svc.IngestDocument(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestIngestDocumentNoCveID(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	res, err := svc.IngestDocument(context.Background(), []byte(`{"dataType": "CVE_RECORD"}`))
	require.NoError(t, err)

	assert.False(t, res.Stored)
	assert.NotEmpty(t, res.Errors)
	assert.Empty(t, store.cves)
}

func TestIngestDocumentSkipsUnidentifiedProducts(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	// An affected entry with no vendor or product normalizes to the
	// placeholder and is not reconciled into the catalog.
	raw := []byte(`{
		"cveMetadata": {"cveId": "CVE-2024-1002"},
		"containers": {"cna": {"affected": [{}]}}
	}`)
	res, err := svc.IngestDocument(context.Background(), raw)
	require.NoError(t, err)

	assert.True(t, res.Stored)
	assert.Zero(t, res.ProductsReconciled)
	assert.Equal(t, 1, res.ProductsSkipped)
	assert.Empty(t, store.products)
}

func TestIngestDocumentStoreFailureCollected(t *testing.T) {
	store := newMemoryStore()
	store.cveErr = fmt.Errorf("connection reset")
	svc := newTestService(store)

	res, err := svc.IngestDocument(context.Background(), advisory("CVE-2024-1003", "Acme", "Widget", "1.0.0"))
	require.NoError(t, err)

	assert.False(t, res.Stored)
	assert.Zero(t, res.ProductsReconciled)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "store record")
}

func TestIngestAccumulatesProductFacts(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	_, err := svc.IngestDocument(context.Background(), advisory("CVE-2024-2000", "Acme", "Widget", "1.0.0"))
	require.NoError(t, err)
	_, err = svc.IngestDocument(context.Background(), advisory("CVE-2024-2001", "Acme", "Widget", "2.0.0"))
	require.NoError(t, err)

	p := store.product("Acme", "Widget")
	require.NotNil(t, p)
	assert.ElementsMatch(t, []string{"CVE-2024-2000", "CVE-2024-2001"}, p.Cves)
	require.Len(t, p.Versions, 2)
}

func TestIngestTwoAdvisoriesSameProduct(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	// First advisory: Acme/Widget affected from 1.0.
	first := advisory("CVE-2024-2100", "Acme", "Widget", "1.0")
	_, err := svc.IngestDocument(context.Background(), first)
	require.NoError(t, err)

	// Second advisory re-contributes version 1.0, adding a status flip at
	// 1.0.5. The catalog entry must end up with one version range carrying
	// the change and back-references to both CVEs.
	second, err := json.Marshal(map[string]any{
		"cveMetadata": map[string]any{"cveId": "CVE-2024-2101"},
		"containers": map[string]any{
			"cna": map[string]any{
				"affected": []any{
					map[string]any{
						"vendor":  "Acme",
						"product": "Widget",
						"versions": []any{
							map[string]any{
								"version":     "1.0",
								"status":      "affected",
								"versionType": "semver",
								"changes": []any{
									map[string]any{"at": "1.0.5", "status": "unaffected"},
								},
							},
						},
					},
				},
			},
		},
	})
	require.NoError(t, err)
	_, err = svc.IngestDocument(context.Background(), second)
	require.NoError(t, err)

	require.Len(t, store.products, 1)
	p := store.product("Acme", "Widget")
	require.NotNil(t, p)

	require.Len(t, p.Versions, 1)
	v := p.Versions[0]
	assert.Equal(t, "1.0", v.Version)
	assert.Equal(t, "affected", v.Status)
	require.Len(t, v.Changes, 1)
	assert.Equal(t, model.VersionChange{At: "1.0.5", Status: "unaffected"}, v.Changes[0])

	assert.ElementsMatch(t, []string{"CVE-2024-2100", "CVE-2024-2101"}, p.Cves)
}

// sliceSource feeds an in-memory document list to IngestBatch.
type sliceSource struct {
	docs [][]byte
	err  error
}

func (s sliceSource) Walk(_ context.Context, fn func(path string, raw []byte) error) error {
	for i, raw := range s.docs {
		if err := fn(fmt.Sprintf("doc-%d.json", i), raw); err != nil {
			return err
		}
	}
	return s.err
}

func TestIngestBatch(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	source := sliceSource{docs: [][]byte{
		advisory("CVE-2024-3000", "Acme", "Widget", "1.0.0"),
		advisory("CVE-2024-3001", "Acme", "Gadget", "1.0.0"),
		[]byte(`{"cveMetadata": {"cveId": "CVE-2024-3002"}}`),
		[]byte(`{broken`),
	}}

	result, err := svc.IngestBatch(context.Background(), source, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Documents)
	assert.Equal(t, 3, result.Stored)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, store.cves, 3)
}

func TestIngestBatchConcurrentFirstSighting(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	// Many advisories naming the same product for the first time, ingested
	// in parallel, must collapse into one catalog entry holding every fact.
	const n = 32
	docs := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, advisory(
			fmt.Sprintf("CVE-2024-4%03d", i),
			"Acme", "Widget",
			fmt.Sprintf("1.%d.0", i),
		))
	}

	result, err := svc.IngestBatch(context.Background(), sliceSource{docs: docs}, 8)
	require.NoError(t, err)
	assert.Equal(t, n, result.Documents)
	assert.Equal(t, n, result.Stored)

	require.Len(t, store.products, 1)
	p := store.product("Acme", "Widget")
	require.NotNil(t, p)
	assert.Len(t, p.Versions, n)
	assert.Len(t, p.Cves, n)
}

func TestIngestBatchWalkError(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	source := sliceSource{
		docs: [][]byte{advisory("CVE-2024-5000", "Acme", "Widget", "1.0.0")},
		err:  fmt.Errorf("remote hung up"),
	}

	result, err := svc.IngestBatch(context.Background(), source, 2)
	assert.Error(t, err)
	// Documents seen before the failure are still counted.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Documents)
}
