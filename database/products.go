package database

import (
	"context"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/ortelius/cve-catalog/model"
)

// ReconcileProduct folds one affected entry into the (vendor, product)
// catalog document as a single server-side UPSERT. The whole merge runs
// inside the UPDATE expression against OLD, so it applies atomically per
// document; the unique composite index turns concurrent first-sightings
// into unique-constraint errors that retryWrite resolves. Two writers
// racing on the same (version, at) pair are last-write-wins.
//
// Merge rules mirror model.Product.Merge: scalars overwrite only when the
// incoming value is non-empty; cpes/modules/programFiles/platforms union by
// value; programRoutines union by name; versions merge by version key with
// changes merged by at; the CVE back-reference appends with set semantics.
func (db DBConnection) ReconcileProduct(ctx context.Context, cveID string, in model.AffectedProduct) error {
	if in.Vendor == "" || in.Product == "" {
		return fmt.Errorf("reconcile product: vendor and product are required")
	}

	// The server-side merge compares incoming ranges against stored ones
	// only; duplicate version keys inside the entry itself must collapse
	// before binding or both would append.
	in.Versions = model.MergeVersionRanges(nil, in.Versions)

	incoming, err := toDocument(in)
	if err != nil {
		return fmt.Errorf("reconcile product %s/%s: %w", in.Vendor, in.Product, err)
	}

	query := `
		LET incoming = @incoming
		UPSERT { vendor: @vendor, product: @product }
		INSERT MERGE(incoming, {
			objtype: "Product",
			cves: [@cveId],
			created_at: DATE_ISO8601(DATE_NOW()),
			updated_at: DATE_ISO8601(DATE_NOW())
		})
		UPDATE {
			collectionURL: incoming.collectionURL != null AND incoming.collectionURL != "" ? incoming.collectionURL : OLD.collectionURL,
			packageName: incoming.packageName != null AND incoming.packageName != "" ? incoming.packageName : OLD.packageName,
			repo: incoming.repo != null AND incoming.repo != "" ? incoming.repo : OLD.repo,
			defaultStatus: incoming.defaultStatus != null AND incoming.defaultStatus != "" ? incoming.defaultStatus : OLD.defaultStatus,
			cpes: UNION_DISTINCT(NOT_NULL(OLD.cpes, []), NOT_NULL(incoming.cpes, [])),
			modules: UNION_DISTINCT(NOT_NULL(OLD.modules, []), NOT_NULL(incoming.modules, [])),
			programFiles: UNION_DISTINCT(NOT_NULL(OLD.programFiles, []), NOT_NULL(incoming.programFiles, [])),
			platforms: UNION_DISTINCT(NOT_NULL(OLD.platforms, []), NOT_NULL(incoming.platforms, [])),
			programRoutines: APPEND(
				NOT_NULL(OLD.programRoutines, []),
				(
					FOR r IN NOT_NULL(incoming.programRoutines, [])
						FILTER r.name NOT IN NOT_NULL(OLD.programRoutines, [])[*].name
						RETURN r
				)
			),
			versions: FIRST(
				LET oldVersions = NOT_NULL(OLD.versions, [])
				LET incVersions = NOT_NULL(incoming.versions, [])
				LET updated = (
					FOR ov IN oldVersions
						LET inc = FIRST(
							FOR iv IN incVersions
								FILTER iv.version == ov.version
								RETURN iv
						)
						RETURN inc == null ? ov : MERGE(ov, {
							status: inc.status != null AND inc.status != "" ? inc.status : ov.status,
							versionType: inc.versionType != null AND inc.versionType != "" ? inc.versionType : ov.versionType,
							lessThan: inc.lessThan != null AND inc.lessThan != "" ? inc.lessThan : ov.lessThan,
							lessThanOrEqual: inc.lessThanOrEqual != null AND inc.lessThanOrEqual != "" ? inc.lessThanOrEqual : ov.lessThanOrEqual,
							changes: FIRST(
								LET oldChanges = NOT_NULL(ov.changes, [])
								LET incChanges = NOT_NULL(inc.changes, [])
								LET overlaid = (
									FOR oc IN oldChanges
										LET ic = FIRST(
											FOR c IN incChanges
												FILTER c.at == oc.at
												RETURN c
										)
										RETURN ic == null ? oc : MERGE(oc, { status: ic.status })
								)
								LET appended = (
									FOR c IN incChanges
										FILTER c.at NOT IN oldChanges[*].at
										RETURN c
								)
								RETURN APPEND(overlaid, appended)
							)
						})
				)
				LET appendedVersions = (
					FOR iv IN incVersions
						FILTER iv.version NOT IN oldVersions[*].version
						RETURN iv
				)
				RETURN APPEND(updated, appendedVersions)
			),
			cves: UNION_DISTINCT(NOT_NULL(OLD.cves, []), [@cveId]),
			updated_at: DATE_ISO8601(DATE_NOW())
		} IN products
		OPTIONS { keepNull: false }
	`

	bindVars := map[string]interface{}{
		"vendor":   in.Vendor,
		"product":  in.Product,
		"cveId":    cveID,
		"incoming": incoming,
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

// GetProduct returns the catalog document for a (vendor, product) pair, or
// ErrNotFound.
func (db DBConnection) GetProduct(ctx context.Context, vendor, product string) (*model.Product, error) {
	query := `
		FOR p IN products
			FILTER p.vendor == @vendor AND p.product == @product
			LIMIT 1
			RETURN p
	`

	bindVars := map[string]interface{}{
		"vendor":  vendor,
		"product": product,
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

	var p model.Product
	if _, err := cursor.ReadDocument(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns catalog documents, optionally filtered by vendor,
// sorted by (vendor, product). limit <= 0 means a default page of 100.
func (db DBConnection) ListProducts(ctx context.Context, vendor string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		FOR p IN products
			FILTER @vendor == "" OR p.vendor == @vendor
			SORT p.vendor, p.product
			LIMIT @limit
			RETURN p
	`

	bindVars := map[string]interface{}{
		"vendor": vendor,
		"limit":  limit,
	}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var products []model.Product
	for cursor.HasMore() {
		var p model.Product
		if _, err := cursor.ReadDocument(ctx, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
