package wheelrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astrachart/astrachart/internal/domain/layout"
)

func TestMemoryRepositorySeedsDefaultWheel(t *testing.T) {
	repo := NewMemoryRepository()

	def, ok, err := repo.Get(context.Background(), "standard_natal")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Standard Natal Wheel", def.Name)
	require.NoError(t, def.Validate())
}

func TestMemoryRepositoryUnknownSlug(t *testing.T) {
	repo := NewMemoryRepository()

	_, ok, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryRepositoryStoreAndList(t *testing.T) {
	repo := NewMemoryRepository()
	custom := layout.DefaultDefinition()
	custom.Slug = "custom"
	custom.Name = "Custom"
	repo.Store(custom)

	defs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)

	def, ok, err := repo.Get(context.Background(), "custom")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Custom", def.Name)
}
