package data

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/timex"
)

func TestUpsert_MintsLocalIDAndMarksDirty(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Upsert(ctx, KindPlods, &models.Plod{Name: "Drilling"})

	items := reg.Items(KindPlods)
	require.Len(t, items, 1)
	base := items[0].Base()
	require.True(t, strings.HasPrefix(base.ID, models.LocalIDPrefix))
	require.True(t, base.Dirty)
	require.NotEmpty(t, base.UpdatedAt)
	require.False(t, timex.Parse(base.UpdatedAt).IsZero())
}

func TestUpsert_DoesNotRetainCallersRecord(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	in := &models.Plod{Name: "Drilling"}
	reg.Upsert(ctx, KindPlods, in)

	// the caller's value is untouched and later edits to it change nothing
	require.Empty(t, in.ID)
	require.False(t, in.Dirty)
	in.Name = "mangled"
	require.Equal(t, "Drilling", reg.Items(KindPlods)[0].(*models.Plod).Name)
}

func TestUpsert_ResubmitOfUnsyncedItemOverwrites(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Upsert(ctx, KindDefinitions, &models.Definition{Name: "Holes Drilled", Unit: "ea"})
	first := reg.Items(KindDefinitions)[0]
	firstStamp := first.Base().UpdatedAt

	edit := first.Clone().(*models.Definition)
	edit.Unit = "holes"
	reg.Upsert(ctx, KindDefinitions, edit)

	items := reg.Items(KindDefinitions)
	require.Len(t, items, 1)
	got := items[0].(*models.Definition)
	require.Equal(t, first.Base().ID, got.ID)
	require.Equal(t, "holes", got.Unit)
	require.True(t, got.Dirty)
	require.True(t, timex.After(got.UpdatedAt, firstStamp))
}

func TestUpsert_NonLocalIDUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Replace(ctx, KindUsers, []models.Record{
		&models.UserProfile{
			Entity:          models.Entity{ID: "u1", UpdatedAt: timex.Stamp(timex.Parse("2025-01-01T00:00:00Z"))},
			Name:            "Batlang",
			OperationalRole: "Driller",
		},
	})

	reg.Upsert(ctx, KindUsers, &models.UserProfile{
		Entity:          models.Entity{ID: "u1"},
		Name:            "Batlang",
		OperationalRole: "Loader",
	})

	items := reg.Items(KindUsers)
	require.Len(t, items, 1)
	got := items[0].(*models.UserProfile)
	require.Equal(t, "Loader", got.OperationalRole)
	require.True(t, got.Dirty)
}

func TestUpsert_UnknownNonLocalIDIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Upsert(ctx, KindUsers, &models.UserProfile{
		Entity: models.Entity{ID: "ghost"},
		Name:   "Nobody",
	})

	require.Empty(t, reg.Items(KindUsers))
	require.False(t, reg.NeedsSync())
}

func TestUpsert_InvalidInputsIgnored(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Upsert(ctx, Kind("trucks"), &models.Plod{Name: "Drilling"})
	reg.Upsert(ctx, KindPlods, nil)

	require.Empty(t, reg.Items(KindPlods))
}

func TestSoftDelete_TombstonesAndStamps(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.Upsert(ctx, KindPlods, &models.Plod{Name: "Drilling"})
	rec := reg.Items(KindPlods)[0]
	before := rec.Base().UpdatedAt

	reg.SoftDelete(ctx, KindPlods, rec.Base().ID)

	items := reg.Items(KindPlods)
	require.Len(t, items, 1)
	base := items[0].Base()
	require.True(t, base.Deleted)
	require.True(t, base.Dirty)
	require.True(t, timex.After(base.UpdatedAt, before))

	// the caller's earlier reference is a different record: arrays swap,
	// records never mutate in place
	require.False(t, rec.Base().Deleted)
}

func TestSoftDelete_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	reg, _ := testRegistry(t)

	reg.SoftDelete(ctx, KindPlods, "ghost")
	require.Empty(t, reg.Items(KindPlods))
}
