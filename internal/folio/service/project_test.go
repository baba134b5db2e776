package service

import (
	"context"
	"testing"

	"github.com/foliokit/folio/internal/folio/store"
	"github.com/stretchr/testify/require"
)

func TestProjectOwnershipScoping(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}
	owner := seedUser(t, st, "owner@example.com")
	other := seedUser(t, st, "other@example.com")

	created, err := svc.Create(ctx, owner.ID, ProjectInput{
		Title:     "Side Project",
		TechStack: []string{"Go", "SQLite"},
	})
	require.NoError(t, err)

	t.Run("owner sees it", func(t *testing.T) {
		got, err := svc.Get(ctx, owner.ID, created.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"Go", "SQLite"}, got.TechStack)
	})

	t.Run("foreign project reads as not found", func(t *testing.T) {
		_, err := svc.Get(ctx, other.ID, created.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("foreign update and delete rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, other.ID, created.ID, ProjectInput{Title: "Hijacked"})
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, svc.Delete(ctx, other.ID, created.ID), store.ErrNotFound)
	})

	t.Run("list is per owner", func(t *testing.T) {
		mine, err := svc.List(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)

		theirs, err := svc.List(ctx, other.ID)
		require.NoError(t, err)
		require.Empty(t, theirs)
	})

	t.Run("owner update and delete", func(t *testing.T) {
		got, err := svc.Update(ctx, owner.ID, created.ID, ProjectInput{Title: "Renamed"})
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.Title)

		require.NoError(t, svc.Delete(ctx, owner.ID, created.ID))
		_, err = svc.Get(ctx, owner.ID, created.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
