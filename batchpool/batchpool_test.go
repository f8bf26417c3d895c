// Copyright 2017, Kerby Shedden and the Muscato contributors.

package batchpool

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64
	errs := Run(items, 2, func(i int) error {
		atomic.AddInt64(&sum, int64(i))
		return nil
	})
	for _, e := range errs {
		assert.NoError(t, e)
	}
	assert.EqualValues(t, 15, sum)
}

func TestRunCapturesPerItemErrors(t *testing.T) {
	items := []int{1, 2, 3}
	errs := Run(items, 1, func(i int) error {
		if i == 2 {
			return errors.New("boom")
		}
		return nil
	})
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])
}

func TestRunDefaultsConcurrency(t *testing.T) {
	items := []int{1, 2, 3}
	errs := Run(items, 0, func(i int) error { return nil })
	assert.Len(t, errs, 3)
}

func TestSpawnCreatesFIFOPerItem(t *testing.T) {
	base := t.TempDir()
	items, err := Spawn(base, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	for _, it := range items {
		fi, err := os.Stat(it.FIFOPath)
		require.NoError(t, err)
		assert.True(t, fi.Mode()&os.ModeNamedPipe != 0)
		assert.Equal(t, filepath.Dir(it.FIFOPath), it.Dir)
	}
}

func TestCleanupRemovesDirectories(t *testing.T) {
	base := t.TempDir()
	items, err := Spawn(base, 2)
	require.NoError(t, err)

	require.NoError(t, Cleanup(items))
	for _, it := range items {
		_, err := os.Stat(it.Dir)
		assert.True(t, os.IsNotExist(err))
	}
}
