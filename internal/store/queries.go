package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresTx methods reference these constants.

// Listing queries.
const (
	queryInsertListing = `
		INSERT INTO listings (source, sku, title, brand, category_id, price, url, updated_at)
		VALUES (@source, @sku, @title, @brand, @category_id, @price, @url, now())
		RETURNING id, updated_at`

	queryGetListing = `
		SELECT id, source, sku, title, brand, category_id, price, url, updated_at
		FROM listings
		WHERE id = $1`

	queryGetListingBySKU = `
		SELECT id, source, sku, title, brand, category_id, price, url, updated_at
		FROM listings
		WHERE source = $1 AND sku = $2`
)

// List queries.
const (
	queryInsertList = `
		INSERT INTO lists (name, is_amazon)
		VALUES ($1, $2)
		RETURNING id`

	queryGetListByName = `
		SELECT id, name, is_amazon
		FROM lists
		WHERE name = $1`

	queryUpdateList = `
		UPDATE lists SET
			name = $2,
			is_amazon = $3
		WHERE id = $1`
)

// Membership queries.
const (
	queryInsertMembership = `
		INSERT INTO list_memberships (list_id, listing_id)
		VALUES ($1, $2)
		RETURNING id`

	queryGetMembership = `
		SELECT id, list_id, listing_id
		FROM list_memberships
		WHERE list_id = $1 AND listing_id = $2`

	queryDeleteMembership = `DELETE FROM list_memberships WHERE id = $1`

	queryListMemberships = `
		SELECT id, list_id, listing_id
		FROM list_memberships
		WHERE list_id = $1
		ORDER BY id`
)

// Product link queries.
const (
	queryInsertLink = `
		INSERT INTO linked_products (amz_listing_id, vnd_listing_id, confidence)
		VALUES ($1, $2, $3)
		RETURNING id`

	queryGetLink = `
		SELECT id, amz_listing_id, vnd_listing_id, confidence
		FROM linked_products
		WHERE amz_listing_id = $1 AND vnd_listing_id = $2`

	queryUpdateLinkConfidence = `
		UPDATE linked_products SET confidence = $2 WHERE id = $1`

	queryDeleteLink = `DELETE FROM linked_products WHERE id = $1`
)

// Operation queries.
const (
	queryInsertOperation = `
		INSERT INTO operations (listing_id, operation, priority, params, scheduled)
		VALUES (@listing_id, @operation, @priority, @params, COALESCE(@scheduled, now()))
		RETURNING id, scheduled`

	queryGetWatch = `
		SELECT id, listing_id, operation, priority, params, scheduled
		FROM operations
		WHERE listing_id = $1
		  AND operation = 'UpdateAmazonListing'
		  AND params ? 'repeat'
		LIMIT 1`

	queryUpdateOperation = `
		UPDATE operations SET
			priority = @priority,
			params = @params,
			scheduled = @scheduled
		WHERE id = @id`

	queryDeleteOperation = `DELETE FROM operations WHERE id = $1`
)

// Category queries.
const (
	queryInsertCategory = `
		INSERT INTO categories (product_category_id, name, product_groups)
		VALUES (NULLIF($1, ''), $2, $3)
		RETURNING id`

	queryGetCategoryByCategoryID = `
		SELECT id, COALESCE(product_category_id, ''), name, product_groups
		FROM categories
		WHERE product_category_id = $1`

	queryGetCategoryByGroup = `
		SELECT id, COALESCE(product_category_id, ''), name, product_groups
		FROM categories
		WHERE $1 = ANY(product_groups)
		ORDER BY id
		LIMIT 1`

	queryGetCategoryByName = `
		SELECT id, COALESCE(product_category_id, ''), name, product_groups
		FROM categories
		WHERE name = $1
		ORDER BY id
		LIMIT 1`

	queryUpdateCategory = `
		UPDATE categories SET
			product_category_id = NULLIF($2, ''),
			name = $3,
			product_groups = $4
		WHERE id = $1`
)

// Rank history queries.
const (
	queryInsertObservation = `
		INSERT INTO rank_history (listing_id, timestamp, salesrank, hasprime, merchant_id, offers)
		VALUES (@listing_id, @timestamp, @salesrank, @hasprime, @merchant_id, @offers)
		RETURNING id`

	queryObservations = `
		SELECT id, listing_id, timestamp, salesrank, hasprime, merchant_id, offers
		FROM rank_history
		WHERE listing_id = $1
		ORDER BY timestamp DESC, id DESC`

	queryObservationBefore = `
		SELECT id, listing_id, timestamp, salesrank, hasprime, merchant_id, offers
		FROM rank_history
		WHERE listing_id = $1 AND id < $2
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`

	queryAvgSalesrank = `
		SELECT AVG(salesrank)
		FROM rank_history
		WHERE listing_id = $1
		  AND ($2::timestamptz IS NULL OR timestamp > $2)`
)

// Pool-level queries.
const (
	queryCounts = `
		SELECT
			(SELECT COUNT(*) FROM listings) AS listings,
			(SELECT COUNT(*) FROM lists) AS lists,
			(SELECT COUNT(*) FROM list_memberships) AS memberships,
			(SELECT COUNT(*) FROM linked_products) AS links,
			(SELECT COUNT(*) FROM linked_products WHERE confidence IS NOT NULL) AS links_scored,
			(SELECT COUNT(*) FROM operations
				WHERE operation = 'UpdateAmazonListing' AND params ? 'repeat') AS watches,
			(SELECT COUNT(*) FROM categories) AS categories,
			(SELECT COUNT(*) FROM rank_history) AS observations`

	queryTxNow = `SELECT now()`
)
