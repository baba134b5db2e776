package service

import (
	"context"
	"testing"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/stretchr/testify/require"
)

func TestPortfolioLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &PortfolioService{Store: st}
	owner := seedUser(t, st, "owner@example.com")

	created, err := svc.Create(ctx, owner.ID, PortfolioInput{
		Name:        "Jane Doe",
		Profession:  "Engineer",
		Skills:      []string{"Go", "SQL"},
		SocialLinks: []string{"https://example.com/jane"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.DefaultTemplateStyle, created.TemplateStyle)

	t.Run("one portfolio per user", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, PortfolioInput{Name: "Second"})
		require.ErrorIs(t, err, ErrPortfolioExists)
	})

	t.Run("list fields round trip", func(t *testing.T) {
		got, err := svc.GetMine(ctx, owner.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"Go", "SQL"}, got.Skills)
		require.Equal(t, []string{"https://example.com/jane"}, got.SocialLinks)
	})

	t.Run("public gallery and detail", func(t *testing.T) {
		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
	})

	t.Run("update keeps template when omitted", func(t *testing.T) {
		got, err := svc.UpdateMine(ctx, owner.ID, PortfolioInput{
			Name:   "Jane Doe",
			Skills: []string{"Go"},
		})
		require.NoError(t, err)
		require.Equal(t, domain.DefaultTemplateStyle, got.TemplateStyle)
		require.Equal(t, []string{"Go"}, got.Skills)
	})

	t.Run("delete mine", func(t *testing.T) {
		require.NoError(t, svc.DeleteMine(ctx, owner.ID))
		_, err := svc.GetMine(ctx, owner.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPortfolioAdminDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &PortfolioService{Store: st}
	owner := seedUser(t, st, "owner@example.com")

	created, err := svc.Create(ctx, owner.ID, PortfolioInput{Name: "Jane Doe"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, created.ID), store.ErrNotFound)
	})
}
