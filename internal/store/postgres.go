package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/awharton/catwatch/pkg/types"
)

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling. Pool
// sizing comes from the connection string (pool_max_conns).
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Counts returns entity totals for the snapshot job and status command.
func (s *PostgresStore) Counts(ctx context.Context) (*domain.Counts, error) {
	c := &domain.Counts{}
	err := s.pool.QueryRow(ctx, queryCounts).Scan(
		&c.Listings, &c.Lists, &c.Memberships, &c.Links,
		&c.LinksScored, &c.Watches, &c.Categories, &c.Observations,
	)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	return c, nil
}

// Begin opens a transaction and captures the transaction-stable clock.
// Postgres now() is frozen at transaction start, so Tx.Now matches what SQL
// defaults see.
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	var now time.Time
	if err := tx.QueryRow(ctx, queryTxNow).Scan(&now); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("reading transaction clock: %w", err)
	}

	return &PostgresTx{tx: tx, now: now}, nil
}

// PostgresTx implements Tx over a single pgx transaction.
type PostgresTx struct {
	tx  pgx.Tx
	now time.Time
}

// Commit commits the transaction.
func (t *PostgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *PostgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// Flush checkpoints the transaction. Statements execute eagerly through pgx,
// so ids are already assigned; this round-trip surfaces an aborted
// transaction before the caller proceeds to scoring.
func (t *PostgresTx) Flush(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("flushing transaction: %w", err)
	}
	return nil
}

// Now returns the clock captured at Begin.
func (t *PostgresTx) Now() time.Time {
	return t.now
}

// GetListing retrieves a listing by id.
func (t *PostgresTx) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := t.tx.QueryRow(ctx, queryGetListing, id).Scan(
		&l.ID, &l.Source, &l.SKU, &l.Title, &l.Brand,
		&l.CategoryID, &l.Price, &l.URL, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing %d: %w", id, err)
	}
	return l, nil
}

// GetListingBySKU retrieves a listing by its (source, sku) pair.
func (t *PostgresTx) GetListingBySKU(ctx context.Context, source domain.Source, sku string) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := t.tx.QueryRow(ctx, queryGetListingBySKU, string(source), sku).Scan(
		&l.ID, &l.Source, &l.SKU, &l.Title, &l.Brand,
		&l.CategoryID, &l.Price, &l.URL, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing (%s, %s): %w", source, sku, err)
	}
	return l, nil
}

// InsertListing inserts a listing and assigns its id.
func (t *PostgresTx) InsertListing(ctx context.Context, l *domain.Listing) error {
	args := pgx.NamedArgs{
		"source":      string(l.Source),
		"sku":         l.SKU,
		"title":       l.Title,
		"brand":       l.Brand,
		"category_id": l.CategoryID,
		"price":       l.Price,
		"url":         l.URL,
	}
	if err := t.tx.QueryRow(ctx, queryInsertListing, args).Scan(&l.ID, &l.UpdatedAt); err != nil {
		return fmt.Errorf("inserting listing: %w", asConflict(err))
	}
	return nil
}

// GetListByName retrieves a list by its unique name.
func (t *PostgresTx) GetListByName(ctx context.Context, name string) (*domain.List, error) {
	l := &domain.List{}
	err := t.tx.QueryRow(ctx, queryGetListByName, name).Scan(&l.ID, &l.Name, &l.IsAmazon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting list %q: %w", name, err)
	}
	return l, nil
}

// InsertList inserts a list and assigns its id.
func (t *PostgresTx) InsertList(ctx context.Context, l *domain.List) error {
	if err := t.tx.QueryRow(ctx, queryInsertList, l.Name, l.IsAmazon).Scan(&l.ID); err != nil {
		return fmt.Errorf("inserting list: %w", asConflict(err))
	}
	return nil
}

// UpdateList persists list name and is_amazon.
func (t *PostgresTx) UpdateList(ctx context.Context, l *domain.List) error {
	if _, err := t.tx.Exec(ctx, queryUpdateList, l.ID, l.Name, l.IsAmazon); err != nil {
		return fmt.Errorf("updating list %d: %w", l.ID, err)
	}
	return nil
}

// GetMembership retrieves the membership for a (list, listing) pair.
func (t *PostgresTx) GetMembership(ctx context.Context, listID, listingID int64) (*domain.ListMembership, error) {
	m := &domain.ListMembership{}
	err := t.tx.QueryRow(ctx, queryGetMembership, listID, listingID).
		Scan(&m.ID, &m.ListID, &m.ListingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting membership: %w", err)
	}
	return m, nil
}

// InsertMembership inserts a membership and assigns its id.
func (t *PostgresTx) InsertMembership(ctx context.Context, m *domain.ListMembership) error {
	if err := t.tx.QueryRow(ctx, queryInsertMembership, m.ListID, m.ListingID).Scan(&m.ID); err != nil {
		return fmt.Errorf("inserting membership: %w", asConflict(err))
	}
	return nil
}

// DeleteMembership deletes a membership by id.
func (t *PostgresTx) DeleteMembership(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, queryDeleteMembership, id); err != nil {
		return fmt.Errorf("deleting membership %d: %w", id, err)
	}
	return nil
}

// ListMemberships returns all memberships for a list.
func (t *PostgresTx) ListMemberships(ctx context.Context, listID int64) ([]domain.ListMembership, error) {
	rows, err := t.tx.Query(ctx, queryListMemberships, listID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	var out []domain.ListMembership
	for rows.Next() {
		var m domain.ListMembership
		if err := rows.Scan(&m.ID, &m.ListID, &m.ListingID); err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memberships: %w", err)
	}
	return out, nil
}

// GetLink retrieves a product link by its ordered listing pair.
func (t *PostgresTx) GetLink(ctx context.Context, amzListingID, vndListingID int64) (*domain.ProductLink, error) {
	l := &domain.ProductLink{}
	err := t.tx.QueryRow(ctx, queryGetLink, amzListingID, vndListingID).
		Scan(&l.ID, &l.AmzListingID, &l.VndListingID, &l.Confidence)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting link: %w", err)
	}
	return l, nil
}

// InsertLink inserts a product link and assigns its id.
func (t *PostgresTx) InsertLink(ctx context.Context, l *domain.ProductLink) error {
	err := t.tx.QueryRow(ctx, queryInsertLink, l.AmzListingID, l.VndListingID, l.Confidence).
		Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("inserting link: %w", asConflict(err))
	}
	return nil
}

// UpdateLinkConfidence sets the cached confidence for a link.
func (t *PostgresTx) UpdateLinkConfidence(ctx context.Context, id int64, confidence float64) error {
	if _, err := t.tx.Exec(ctx, queryUpdateLinkConfidence, id, confidence); err != nil {
		return fmt.Errorf("updating link %d confidence: %w", id, err)
	}
	return nil
}

// DeleteLink deletes a product link by id.
func (t *PostgresTx) DeleteLink(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, queryDeleteLink, id); err != nil {
		return fmt.Errorf("deleting link %d: %w", id, err)
	}
	return nil
}

// GetWatch retrieves the repeating UpdateAmazonListing operation for a
// listing, or nil when none is recorded.
func (t *PostgresTx) GetWatch(ctx context.Context, listingID int64) (*domain.Operation, error) {
	op := &domain.Operation{}
	var params []byte
	err := t.tx.QueryRow(ctx, queryGetWatch, listingID).
		Scan(&op.ID, &op.ListingID, &op.Kind, &op.Priority, &params, &op.Scheduled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting watch for listing %d: %w", listingID, err)
	}
	if err := json.Unmarshal(params, &op.Params); err != nil {
		return nil, fmt.Errorf("decoding operation params: %w", err)
	}
	return op, nil
}

// InsertOperation inserts an operation, assigning its id and, when Scheduled
// is zero, the store-side default timestamp.
func (t *PostgresTx) InsertOperation(ctx context.Context, op *domain.Operation) error {
	params, err := marshalParams(op.Params)
	if err != nil {
		return err
	}

	var scheduled any
	if !op.Scheduled.IsZero() {
		scheduled = op.Scheduled
	}

	args := pgx.NamedArgs{
		"listing_id": op.ListingID,
		"operation":  op.Kind,
		"priority":   op.Priority,
		"params":     params,
		"scheduled":  scheduled,
	}
	if err := t.tx.QueryRow(ctx, queryInsertOperation, args).Scan(&op.ID, &op.Scheduled); err != nil {
		return fmt.Errorf("inserting operation: %w", asConflict(err))
	}
	return nil
}

// UpdateOperation persists priority, params, and scheduled for an operation.
func (t *PostgresTx) UpdateOperation(ctx context.Context, op *domain.Operation) error {
	params, err := marshalParams(op.Params)
	if err != nil {
		return err
	}

	args := pgx.NamedArgs{
		"id":        op.ID,
		"priority":  op.Priority,
		"params":    params,
		"scheduled": op.Scheduled,
	}
	if _, err := t.tx.Exec(ctx, queryUpdateOperation, args); err != nil {
		return fmt.Errorf("updating operation %d: %w", op.ID, err)
	}
	return nil
}

// DeleteOperation deletes an operation by id.
func (t *PostgresTx) DeleteOperation(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, queryDeleteOperation, id); err != nil {
		return fmt.Errorf("deleting operation %d: %w", id, err)
	}
	return nil
}

// asConflict translates a Postgres unique_violation into ErrConflict so
// callers can errors.Is against a single sentinel across backends.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

func marshalParams(params map[string]any) ([]byte, error) {
	if params == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling operation params: %w", err)
	}
	return data, nil
}

func (t *PostgresTx) scanCategory(ctx context.Context, sql string, arg any) (*domain.Category, error) {
	c := &domain.Category{}
	err := t.tx.QueryRow(ctx, sql, arg).
		Scan(&c.ID, &c.ProductCategoryID, &c.Name, &c.ProductGroups)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// GetCategoryByCategoryID retrieves a category by its product category id.
func (t *PostgresTx) GetCategoryByCategoryID(ctx context.Context, productCategoryID string) (*domain.Category, error) {
	return t.scanCategory(ctx, queryGetCategoryByCategoryID, productCategoryID)
}

// GetCategoryByGroup retrieves the first category whose product_groups
// contain group.
func (t *PostgresTx) GetCategoryByGroup(ctx context.Context, group string) (*domain.Category, error) {
	return t.scanCategory(ctx, queryGetCategoryByGroup, group)
}

// GetCategoryByName retrieves the first category with the given name.
func (t *PostgresTx) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	return t.scanCategory(ctx, queryGetCategoryByName, name)
}

// InsertCategory inserts a category and assigns its id.
func (t *PostgresTx) InsertCategory(ctx context.Context, c *domain.Category) error {
	groups := c.ProductGroups
	if groups == nil {
		groups = []string{}
	}
	err := t.tx.QueryRow(ctx, queryInsertCategory, c.ProductCategoryID, c.Name, groups).
		Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting category: %w", asConflict(err))
	}
	return nil
}

// UpdateCategory persists category fields.
func (t *PostgresTx) UpdateCategory(ctx context.Context, c *domain.Category) error {
	groups := c.ProductGroups
	if groups == nil {
		groups = []string{}
	}
	_, err := t.tx.Exec(ctx, queryUpdateCategory, c.ID, c.ProductCategoryID, c.Name, groups)
	if err != nil {
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	return nil
}

// Observations returns all rank history for a listing, newest first.
func (t *PostgresTx) Observations(ctx context.Context, listingID int64) ([]domain.RankObservation, error) {
	rows, err := t.tx.Query(ctx, queryObservations, listingID)
	if err != nil {
		return nil, fmt.Errorf("querying rank history: %w", err)
	}
	defer rows.Close()

	var out []domain.RankObservation
	for rows.Next() {
		var o domain.RankObservation
		if err := rows.Scan(&o.ID, &o.ListingID, &o.Timestamp, &o.Salesrank,
			&o.HasPrime, &o.MerchantID, &o.Offers); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rank history: %w", err)
	}
	return out, nil
}

// ObservationBefore returns the most recent observation whose id is strictly
// below beforeID, ties broken by larger id.
func (t *PostgresTx) ObservationBefore(ctx context.Context, listingID, beforeID int64) (*domain.RankObservation, error) {
	o := &domain.RankObservation{}
	err := t.tx.QueryRow(ctx, queryObservationBefore, listingID, beforeID).
		Scan(&o.ID, &o.ListingID, &o.Timestamp, &o.Salesrank,
			&o.HasPrime, &o.MerchantID, &o.Offers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting prior observation: %w", err)
	}
	return o, nil
}

// AvgSalesrank computes the mean salesrank, optionally restricted to
// observations strictly after since. Returns nil when no rows qualify.
func (t *PostgresTx) AvgSalesrank(ctx context.Context, listingID int64, since *time.Time) (*float64, error) {
	var avg *float64
	if err := t.tx.QueryRow(ctx, queryAvgSalesrank, listingID, since).Scan(&avg); err != nil {
		return nil, fmt.Errorf("averaging salesrank: %w", err)
	}
	return avg, nil
}

// InsertObservation appends a rank history row and assigns its id.
func (t *PostgresTx) InsertObservation(ctx context.Context, o *domain.RankObservation) error {
	args := pgx.NamedArgs{
		"listing_id":  o.ListingID,
		"timestamp":   o.Timestamp,
		"salesrank":   o.Salesrank,
		"hasprime":    o.HasPrime,
		"merchant_id": o.MerchantID,
		"offers":      o.Offers,
	}
	if err := t.tx.QueryRow(ctx, queryInsertObservation, args).Scan(&o.ID); err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}
	return nil
}
