package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/hisab/internal/models"
)

// SnapshotReader is the subset of Store needed to load a group snapshot.
type SnapshotReader interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)
	ListFunds(ctx context.Context, groupID string) ([]models.Fund, error)
	ListMeals(ctx context.Context, groupID string) ([]models.Meal, error)
}

// LoadSnapshot reads a group and all of its entries. The collections are
// fetched concurrently; the first error cancels the remaining reads.
func LoadSnapshot(ctx context.Context, r SnapshotReader, groupID string) (models.Snapshot, error) {
	group, err := r.GetGroup(ctx, groupID)
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{Group: *group}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Members, err = r.ListMembers(gctx, groupID)
		return err
	})
	g.Go(func() (err error) {
		snap.Expenses, err = r.ListExpenses(gctx, groupID)
		return err
	})
	g.Go(func() (err error) {
		snap.Funds, err = r.ListFunds(gctx, groupID)
		return err
	})
	g.Go(func() (err error) {
		snap.Meals, err = r.ListMeals(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to load snapshot for group %s: %w", groupID, err)
	}
	return snap, nil
}
