package rental

import (
	"context"

	"github.com/vaqsi1990/cloth-sub001/model"
	"github.com/vaqsi1990/cloth-sub001/util/interval"
)

// Inventory side effects of lifecycle transitions. Both helpers run inside
// an already-open transaction and are idempotent, so a failed release can
// be retried alone via Resync.

// occupyItem flips a rentable item to RENTED when a booking is created.
// Non-rentable items never reach here; create rejects them first.
func (s *service) occupyItem(ctx context.Context, tx Tx, item *model.Item) error {
	if !item.Rentable {
		return nil
	}
	return tx.SetItemStatus(ctx, item.ID, model.ItemRented)
}

// releaseItem restores a returned or canceled booking's item. The item
// goes back to AVAILABLE only while it is still configured as rentable;
// otherwise it is left for the seller to resolve. Stale shadow lines for
// the item are purged so they stop feeding the busy scan.
func (s *service) releaseItem(ctx context.Context, tx Tx, itemID int64, purge bool) error {
	item, err := tx.ItemForUpdate(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Rentable {
		if err := tx.SetItemStatus(ctx, item.ID, model.ItemAvailable); err != nil {
			return err
		}
	}
	if purge {
		if _, err := tx.PurgeStaleRentalLines(ctx, item.ID, interval.Day(s.now())); err != nil {
			return err
		}
	}
	return nil
}

// syncReturn runs the release in its own transaction, after the ledger
// transition already committed. Its failure is the PartialFailure case.
func (s *service) syncReturn(ctx context.Context, itemID int64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.releaseItem(ctx, tx, itemID, true); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
