package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	domain "github.com/awharton/catwatch/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printListingDetail(l *domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%d\n", l.ID)
	tw.writef("Source:\t%s\n", l.Source)
	tw.writef("SKU:\t%s\n", l.SKU)
	tw.writef("Title:\t%s\n", l.Title)
	tw.writef("Brand:\t%s\n", l.Brand)
	tw.writef("Price:\t$%.2f\n", l.Price)
	if l.CategoryID != nil {
		tw.writef("Category:\t%d\n", *l.CategoryID)
	}
	tw.writef("URL:\t%s\n", l.URL)
	return tw.finish()
}

func printListingsTable(listings []domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tSOURCE\tSKU\tTITLE\tPRICE\n")
	for i := range listings {
		tw.writef("%d\t%s\t%s\t%s\t$%.2f\n",
			listings[i].ID,
			listings[i].Source,
			listings[i].SKU,
			truncate(listings[i].Title, 40),
			listings[i].Price,
		)
	}
	return tw.finish()
}

func printLinkDetail(l *domain.ProductLink) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%d\n", l.ID)
	tw.writef("Amazon listing:\t%d\n", l.AmzListingID)
	tw.writef("Vendor listing:\t%d\n", l.VndListingID)
	if l.Confidence != nil {
		tw.writef("Confidence:\t%.3f\n", *l.Confidence)
	} else {
		tw.writef("Confidence:\t-\n")
	}
	return tw.finish()
}

func printWatchDetail(op *domain.Operation) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%d\n", op.ID)
	tw.writef("Listing:\t%d\n", op.ListingID)
	tw.writef("Operation:\t%s\n", op.Kind)
	tw.writef("Priority:\t%d\n", op.Priority)
	tw.writef("Repeat:\t%s\n", op.RepeatInterval())
	tw.writef("Scheduled:\t%s\n", op.Scheduled.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printObservationsTable(obs []domain.RankObservation) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTIMESTAMP\tSALESRANK\tPRIME\tOFFERS\n")
	for i := range obs {
		tw.writef("%d\t%s\t%d\t%v\t%d\n",
			obs[i].ID,
			obs[i].Timestamp.Format("2006-01-02 15:04:05"),
			obs[i].Salesrank,
			obs[i].HasPrime,
			obs[i].Offers,
		)
	}
	return tw.finish()
}

func printCounts(c *domain.Counts) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Listings:\t%d\n", c.Listings)
	tw.writef("Lists:\t%d\n", c.Lists)
	tw.writef("Memberships:\t%d\n", c.Memberships)
	tw.writef("Links:\t%d\n", c.Links)
	tw.writef("Links scored:\t%d\n", c.LinksScored)
	tw.writef("Watches:\t%d\n", c.Watches)
	tw.writef("Categories:\t%d\n", c.Categories)
	tw.writef("Observations:\t%d\n", c.Observations)
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
