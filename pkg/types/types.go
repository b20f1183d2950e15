// Package domain defines the core business types for catwatch: catalog
// listings, named lists, cross-catalog product links, scheduled operations,
// categories, and salesrank history observations.
package domain

import (
	"time"
)

// Source discriminates which catalog a listing came from. It is decided once
// at creation time and never inferred downstream.
type Source string

// Listing source constants.
const (
	SourceAmazon Source = "amazon"
	SourceVendor Source = "vendor"
)

// Listing represents a catalog item from either marketplace.
type Listing struct {
	ID         int64     `json:"id"                    db:"id"`
	Source     Source    `json:"source"                db:"source"`
	SKU        string    `json:"sku"                   db:"sku"`
	Title      string    `json:"title"                 db:"title"`
	Brand      string    `json:"brand,omitempty"       db:"brand"`
	CategoryID *int64    `json:"category_id,omitempty" db:"category_id"`
	Price      float64   `json:"price"                 db:"price"`
	URL        string    `json:"url,omitempty"         db:"url"`
	UpdatedAt  time.Time `json:"updated_at"            db:"updated_at"`
}

// IsAmazon reports whether the listing is Amazon-sourced.
func (l *Listing) IsAmazon() bool {
	return l.Source == SourceAmazon
}

// List is a named collection of listings. IsAmazon is advisory: it is derived
// from a single member sample, not enforced across the membership.
type List struct {
	ID       int64  `json:"id"        db:"id"`
	Name     string `json:"name"      db:"name"`
	IsAmazon bool   `json:"is_amazon" db:"is_amazon"`
}

// ListMembership joins a list to a listing. The (list, listing) pair is
// unique; a membership has no identity beyond it.
type ListMembership struct {
	ID        int64 `json:"id"         db:"id"`
	ListID    int64 `json:"list_id"    db:"list_id"`
	ListingID int64 `json:"listing_id" db:"listing_id"`
}

// ProductLink relates one Amazon listing to one vendor listing. The ordered
// pair is unique. Confidence is computed lazily and never recomputed once set.
type ProductLink struct {
	ID           int64    `json:"id"                   db:"id"`
	AmzListingID int64    `json:"amz_listing_id"       db:"amz_listing_id"`
	VndListingID int64    `json:"vnd_listing_id"       db:"vnd_listing_id"`
	Confidence   *float64 `json:"confidence,omitempty" db:"confidence"`
}

// Operation kinds.
const (
	OpUpdateAmazonListing = "UpdateAmazonListing"
)

// Operation parameter keys.
const (
	ParamRepeat = "repeat"
	ParamLog    = "log"
)

// DefaultWatchPriority is assigned when a watch operation is first created.
const DefaultWatchPriority = 5

// Operation is a generic scheduled action record. Nothing in this repository
// executes operations; they only record intent.
type Operation struct {
	ID        int64          `json:"id"         db:"id"`
	ListingID int64          `json:"listing_id" db:"listing_id"`
	Kind      string         `json:"operation"  db:"operation"`
	Priority  int            `json:"priority"   db:"priority"`
	Params    map[string]any `json:"params"     db:"params"`
	Scheduled time.Time      `json:"scheduled"  db:"scheduled"`
}

// NewUpdateListingOp builds an UpdateAmazonListing operation for the given
// listing with the default watch priority. The kind tag is fixed here so it is
// never assembled ad hoc at call sites.
func NewUpdateListingOp(listingID int64) *Operation {
	return &Operation{
		ListingID: listingID,
		Kind:      OpUpdateAmazonListing,
		Priority:  DefaultWatchPriority,
	}
}

// IsWatch reports whether this operation is a recurring listing watch: an
// UpdateAmazonListing operation whose params carry a repeat marker.
func (o *Operation) IsWatch() bool {
	if o.Kind != OpUpdateAmazonListing {
		return false
	}
	_, ok := o.Params[ParamRepeat]
	return ok
}

// RepeatInterval returns the watch repeat value, or "" when the operation is
// not a watch.
func (o *Operation) RepeatInterval() string {
	v, ok := o.Params[ParamRepeat]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// UnknownCategoryName is the singleton fallback category.
const UnknownCategoryName = "Unknown"

// Category is an Amazon product category. ProductCategoryID is unique when
// set; ProductGroups is a coarse fallback match key.
type Category struct {
	ID                int64    `json:"id"                            db:"id"`
	ProductCategoryID string   `json:"product_category_id,omitempty" db:"product_category_id"`
	Name              string   `json:"name"                          db:"name"`
	ProductGroups     []string `json:"product_groups,omitempty"      db:"product_groups"`
}

// HasGroup reports whether the category's product groups contain group.
func (c *Category) HasGroup(group string) bool {
	for _, g := range c.ProductGroups {
		if g == group {
			return true
		}
	}
	return false
}

// RankObservation is one salesrank sample for a listing. History is
// append-only; nothing in this repository mutates or deletes observations.
type RankObservation struct {
	ID         int64     `json:"id"          db:"id"`
	ListingID  int64     `json:"listing_id"  db:"listing_id"`
	Timestamp  time.Time `json:"timestamp"   db:"timestamp"`
	Salesrank  int       `json:"salesrank"   db:"salesrank"`
	HasPrime   bool      `json:"hasprime"    db:"hasprime"`
	MerchantID int64     `json:"merchant_id" db:"merchant_id"`
	Offers     int       `json:"offers"      db:"offers"`
}

// Counts is a snapshot of entity totals, refreshed periodically into metrics
// gauges and shown by the status command.
type Counts struct {
	Listings     int `json:"listings"     db:"listings"`
	Lists        int `json:"lists"        db:"lists"`
	Memberships  int `json:"memberships"  db:"memberships"`
	Links        int `json:"links"        db:"links"`
	LinksScored  int `json:"links_scored" db:"links_scored"`
	Watches      int `json:"watches"      db:"watches"`
	Categories   int `json:"categories"   db:"categories"`
	Observations int `json:"observations" db:"observations"`
}
