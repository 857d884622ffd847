package storage

import (
	"context"
	"fmt"

	"wedding-site/internal/models"
)

// Records gives typed access to the RSVP and pledge tables of a Store.
type Records struct {
	store Store
}

// NewRecords wraps store.
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// Store returns the underlying row store.
func (r *Records) Store() Store {
	return r.store
}

// AppendRSVP persists one RSVP.
func (r *Records) AppendRSVP(ctx context.Context, rec models.RSVPRecord) error {
	return r.store.Append(ctx, TableRSVP, rec.Row())
}

// AppendPledge persists one pledge.
func (r *Records) AppendPledge(ctx context.Context, rec models.PledgeRecord) error {
	return r.store.Append(ctx, TablePledges, rec.Row())
}

// RSVPs returns every stored RSVP in insertion order.
func (r *Records) RSVPs(ctx context.Context) ([]models.RSVPRecord, error) {
	rows, err := r.store.ReadAll(ctx, TableRSVP)
	if err != nil {
		return nil, err
	}
	out := make([]models.RSVPRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := models.ParseRSVPRow(row)
		if err != nil {
			return nil, fmt.Errorf("rsvp row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Pledges returns every stored pledge in insertion order.
func (r *Records) Pledges(ctx context.Context) ([]models.PledgeRecord, error) {
	rows, err := r.store.ReadAll(ctx, TablePledges)
	if err != nil {
		return nil, err
	}
	out := make([]models.PledgeRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := models.ParsePledgeRow(row)
		if err != nil {
			return nil, fmt.Errorf("pledge row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReferenceExists reports whether a pledge already carries code.
func (r *Records) ReferenceExists(ctx context.Context, code string) (bool, error) {
	rows, err := r.store.ReadAll(ctx, TablePledges)
	if err != nil {
		return false, err
	}
	idx := columnIndex(TablePledges, "reference_code")
	for _, row := range rows {
		if idx >= 0 && len(row) > idx && row[idx] == code {
			return true, nil
		}
	}
	return false, nil
}

func columnIndex(table Table, name string) int {
	for i, c := range table.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}
