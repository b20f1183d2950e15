package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/awharton/catwatch/pkg/types"
)

// MemoryStore is an in-memory Store used by unit tests and local
// experimentation. It enforces the same uniqueness constraints as the
// Postgres schema but is not transactional: writes apply immediately and
// Commit/Rollback are no-ops. Each test should own its store.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64

	listings     map[int64]domain.Listing
	lists        map[int64]domain.List
	memberships  map[int64]domain.ListMembership
	links        map[int64]domain.ProductLink
	operations   map[int64]domain.Operation
	categories   map[int64]domain.Category
	observations map[int64]domain.RankObservation
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:     make(map[int64]domain.Listing),
		lists:        make(map[int64]domain.List),
		memberships:  make(map[int64]domain.ListMembership),
		links:        make(map[int64]domain.ProductLink),
		operations:   make(map[int64]domain.Operation),
		categories:   make(map[int64]domain.Category),
		observations: make(map[int64]domain.RankObservation),
	}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Begin opens a pseudo-transaction with the clock captured now.
func (s *MemoryStore) Begin(_ context.Context) (Tx, error) {
	return &MemoryTx{s: s, now: time.Now()}, nil
}

// Counts returns entity totals.
func (s *MemoryStore) Counts(_ context.Context) (*domain.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Counts{
		Listings:     len(s.listings),
		Lists:        len(s.lists),
		Memberships:  len(s.memberships),
		Links:        len(s.links),
		Categories:   len(s.categories),
		Observations: len(s.observations),
	}
	for _, l := range s.links {
		if l.Confidence != nil {
			c.LinksScored++
		}
	}
	for id := range s.operations {
		op := s.operations[id]
		if op.IsWatch() {
			c.Watches++
		}
	}
	return c, nil
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// MemoryTx implements Tx against a MemoryStore.
type MemoryTx struct {
	s   *MemoryStore
	now time.Time
}

// Commit is a no-op; MemoryStore writes apply immediately.
func (t *MemoryTx) Commit(_ context.Context) error { return nil }

// Rollback is a no-op; MemoryStore writes apply immediately.
func (t *MemoryTx) Rollback(_ context.Context) error { return nil }

// Flush is a no-op checkpoint; ids are assigned at insert time.
func (t *MemoryTx) Flush(_ context.Context) error { return nil }

// Now returns the clock captured at Begin.
func (t *MemoryTx) Now() time.Time { return t.now }

// GetListing retrieves a listing by id.
func (t *MemoryTx) GetListing(_ context.Context, id int64) (*domain.Listing, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	l, ok := t.s.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// GetListingBySKU retrieves a listing by its (source, sku) pair.
func (t *MemoryTx) GetListingBySKU(_ context.Context, source domain.Source, sku string) (*domain.Listing, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.listings {
		l := t.s.listings[id]
		if l.Source == source && l.SKU == sku {
			return &l, nil
		}
	}
	return nil, nil
}

// InsertListing inserts a listing, enforcing (source, sku) uniqueness.
func (t *MemoryTx) InsertListing(_ context.Context, l *domain.Listing) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, existing := range t.s.listings {
		if existing.Source == l.Source && existing.SKU == l.SKU {
			return fmt.Errorf("listing (%s, %s): %w", l.Source, l.SKU, ErrConflict)
		}
	}
	l.ID = t.s.id()
	l.UpdatedAt = t.now
	t.s.listings[l.ID] = *l
	return nil
}

// GetListByName retrieves a list by name.
func (t *MemoryTx) GetListByName(_ context.Context, name string) (*domain.List, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.lists {
		if t.s.lists[id].Name == name {
			l := t.s.lists[id]
			return &l, nil
		}
	}
	return nil, nil
}

// InsertList inserts a list, enforcing name uniqueness.
func (t *MemoryTx) InsertList(_ context.Context, l *domain.List) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, existing := range t.s.lists {
		if existing.Name == l.Name {
			return fmt.Errorf("list %q: %w", l.Name, ErrConflict)
		}
	}
	l.ID = t.s.id()
	t.s.lists[l.ID] = *l
	return nil
}

// UpdateList persists a list.
func (t *MemoryTx) UpdateList(_ context.Context, l *domain.List) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.lists[l.ID]; !ok {
		return fmt.Errorf("list %d not found", l.ID)
	}
	t.s.lists[l.ID] = *l
	return nil
}

// GetMembership retrieves the membership for a (list, listing) pair.
func (t *MemoryTx) GetMembership(_ context.Context, listID, listingID int64) (*domain.ListMembership, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.memberships {
		m := t.s.memberships[id]
		if m.ListID == listID && m.ListingID == listingID {
			return &m, nil
		}
	}
	return nil, nil
}

// InsertMembership inserts a membership, enforcing pair uniqueness.
func (t *MemoryTx) InsertMembership(_ context.Context, m *domain.ListMembership) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, existing := range t.s.memberships {
		if existing.ListID == m.ListID && existing.ListingID == m.ListingID {
			return fmt.Errorf("membership (%d, %d): %w", m.ListID, m.ListingID, ErrConflict)
		}
	}
	m.ID = t.s.id()
	t.s.memberships[m.ID] = *m
	return nil
}

// DeleteMembership deletes a membership by id.
func (t *MemoryTx) DeleteMembership(_ context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	delete(t.s.memberships, id)
	return nil
}

// ListMemberships returns all memberships for a list, ordered by id.
func (t *MemoryTx) ListMemberships(_ context.Context, listID int64) ([]domain.ListMembership, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var out []domain.ListMembership
	for id := range t.s.memberships {
		if t.s.memberships[id].ListID == listID {
			out = append(out, t.s.memberships[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetLink retrieves a product link by its ordered listing pair.
func (t *MemoryTx) GetLink(_ context.Context, amzListingID, vndListingID int64) (*domain.ProductLink, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.links {
		l := t.s.links[id]
		if l.AmzListingID == amzListingID && l.VndListingID == vndListingID {
			return &l, nil
		}
	}
	return nil, nil
}

// InsertLink inserts a product link, enforcing pair uniqueness.
func (t *MemoryTx) InsertLink(_ context.Context, l *domain.ProductLink) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, existing := range t.s.links {
		if existing.AmzListingID == l.AmzListingID && existing.VndListingID == l.VndListingID {
			return fmt.Errorf("link (%d, %d): %w", l.AmzListingID, l.VndListingID, ErrConflict)
		}
	}
	l.ID = t.s.id()
	t.s.links[l.ID] = *l
	return nil
}

// UpdateLinkConfidence sets the cached confidence for a link.
func (t *MemoryTx) UpdateLinkConfidence(_ context.Context, id int64, confidence float64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	l, ok := t.s.links[id]
	if !ok {
		return fmt.Errorf("link %d not found", id)
	}
	l.Confidence = &confidence
	t.s.links[id] = l
	return nil
}

// DeleteLink deletes a product link by id.
func (t *MemoryTx) DeleteLink(_ context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	delete(t.s.links, id)
	return nil
}

// GetWatch retrieves the repeating UpdateAmazonListing operation for a
// listing, or nil when none is recorded.
func (t *MemoryTx) GetWatch(_ context.Context, listingID int64) (*domain.Operation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.operations {
		op := t.s.operations[id]
		if op.ListingID == listingID && op.IsWatch() {
			cp := op
			cp.Params = cloneParams(op.Params)
			return &cp, nil
		}
	}
	return nil, nil
}

// InsertOperation inserts an operation, enforcing the one-watch-per-listing
// partial uniqueness.
func (t *MemoryTx) InsertOperation(_ context.Context, op *domain.Operation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if op.IsWatch() {
		for _, existing := range t.s.operations {
			if existing.ListingID == op.ListingID && existing.IsWatch() {
				return fmt.Errorf("watch for listing %d: %w", op.ListingID, ErrConflict)
			}
		}
	}
	op.ID = t.s.id()
	if op.Scheduled.IsZero() {
		op.Scheduled = t.now
	}
	cp := *op
	cp.Params = cloneParams(op.Params)
	t.s.operations[op.ID] = cp
	return nil
}

// UpdateOperation persists an operation.
func (t *MemoryTx) UpdateOperation(_ context.Context, op *domain.Operation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.operations[op.ID]; !ok {
		return fmt.Errorf("operation %d not found", op.ID)
	}
	cp := *op
	cp.Params = cloneParams(op.Params)
	t.s.operations[op.ID] = cp
	return nil
}

// DeleteOperation deletes an operation by id.
func (t *MemoryTx) DeleteOperation(_ context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	delete(t.s.operations, id)
	return nil
}

// GetCategoryByCategoryID retrieves a category by its product category id.
func (t *MemoryTx) GetCategoryByCategoryID(_ context.Context, productCategoryID string) (*domain.Category, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.s.categories {
		c := t.s.categories[id]
		if c.ProductCategoryID != "" && c.ProductCategoryID == productCategoryID {
			return &c, nil
		}
	}
	return nil, nil
}

// GetCategoryByGroup retrieves the lowest-id category containing group.
func (t *MemoryTx) GetCategoryByGroup(_ context.Context, group string) (*domain.Category, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var best *domain.Category
	for id := range t.s.categories {
		c := t.s.categories[id]
		if c.HasGroup(group) && (best == nil || c.ID < best.ID) {
			cp := c
			best = &cp
		}
	}
	return best, nil
}

// GetCategoryByName retrieves the lowest-id category with the given name.
func (t *MemoryTx) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var best *domain.Category
	for id := range t.s.categories {
		c := t.s.categories[id]
		if c.Name == name && (best == nil || c.ID < best.ID) {
			cp := c
			best = &cp
		}
	}
	return best, nil
}

// InsertCategory inserts a category, enforcing product_category_id
// uniqueness when set.
func (t *MemoryTx) InsertCategory(_ context.Context, c *domain.Category) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if c.ProductCategoryID != "" {
		for _, existing := range t.s.categories {
			if existing.ProductCategoryID == c.ProductCategoryID {
				return fmt.Errorf("category %q: %w", c.ProductCategoryID, ErrConflict)
			}
		}
	}
	c.ID = t.s.id()
	t.s.categories[c.ID] = *c
	return nil
}

// UpdateCategory persists a category.
func (t *MemoryTx) UpdateCategory(_ context.Context, c *domain.Category) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.categories[c.ID]; !ok {
		return fmt.Errorf("category %d not found", c.ID)
	}
	t.s.categories[c.ID] = *c
	return nil
}

// Observations returns all rank history for a listing, newest first.
func (t *MemoryTx) Observations(_ context.Context, listingID int64) ([]domain.RankObservation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var out []domain.RankObservation
	for id := range t.s.observations {
		if t.s.observations[id].ListingID == listingID {
			out = append(out, t.s.observations[id])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ObservationBefore returns the most recent observation whose id is strictly
// below beforeID, ties broken by larger id.
func (t *MemoryTx) ObservationBefore(_ context.Context, listingID, beforeID int64) (*domain.RankObservation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var best *domain.RankObservation
	for id := range t.s.observations {
		o := t.s.observations[id]
		if o.ListingID != listingID || o.ID >= beforeID {
			continue
		}
		if best == nil || o.Timestamp.After(best.Timestamp) ||
			(o.Timestamp.Equal(best.Timestamp) && o.ID > best.ID) {
			cp := o
			best = &cp
		}
	}
	return best, nil
}

// AvgSalesrank computes the mean salesrank, optionally restricted to
// observations strictly after since. Returns nil when no rows qualify.
func (t *MemoryTx) AvgSalesrank(_ context.Context, listingID int64, since *time.Time) (*float64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var sum float64
	var n int
	for id := range t.s.observations {
		o := t.s.observations[id]
		if o.ListingID != listingID {
			continue
		}
		if since != nil && !o.Timestamp.After(*since) {
			continue
		}
		sum += float64(o.Salesrank)
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

// InsertObservation appends a rank history row and assigns its id.
func (t *MemoryTx) InsertObservation(_ context.Context, o *domain.RankObservation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	o.ID = t.s.id()
	t.s.observations[o.ID] = *o
	return nil
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return cp
}
