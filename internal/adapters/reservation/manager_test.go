package reservation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/reservation"
)

func TestManager_TryReserveExact(t *testing.T) {
	t.Parallel()

	m, err := reservation.NewManager(t.TempDir())
	require.NoError(t, err)

	first, err := m.TryReserveExact("Preprocessor")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, filepath.Join(m.Root(), "Preprocessor"), first.Path())

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	second, err := m.TryReserveExact("Preprocessor")
	require.NoError(t, err)
	assert.Nil(t, second, "a held reservation must not be handed out twice")

	require.NoError(t, first.Release())
	require.NoError(t, first.Release(), "release is idempotent")

	third, err := m.TryReserveExact("Preprocessor")
	require.NoError(t, err)
	require.NotNil(t, third)
	require.NoError(t, third.Release())
}

func TestManager_Reserve(t *testing.T) {
	t.Parallel()

	m, err := reservation.NewManager(t.TempDir())
	require.NoError(t, err)

	a, err := m.Reserve(context.Background(), "cl.exe")
	require.NoError(t, err)
	b, err := m.Reserve(context.Background(), "cl.exe")
	require.NoError(t, err)

	assert.Equal(t, "cl.exe-0", filepath.Base(a.Path()))
	assert.Equal(t, "cl.exe-1", filepath.Base(b.Path()))

	require.NoError(t, a.Release())

	c, err := m.Reserve(context.Background(), "cl.exe")
	require.NoError(t, err)
	assert.Equal(t, a.Path(), c.Path(), "released slots are reused")

	require.NoError(t, b.Release())
	require.NoError(t, c.Release())
}

func TestManager_Reserve_Cancelled(t *testing.T) {
	t.Parallel()

	m, err := reservation.NewManager(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Reserve(ctx, "link.exe")
	assert.ErrorIs(t, err, context.Canceled)
}
