package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"created_by": 1000, "groups": ["ECO-22", "ECO-23"]}`), 0o600))

	seed, err := loadSeed(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, seed.CreatedBy)
	assert.Equal(t, []string{"ECO-22", "ECO-23"}, seed.Groups)
}

func TestLoadSeedRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"groups": [`), 0o600))

	_, err := loadSeed(path)
	require.Error(t, err)
}

func TestSeedGroupsIsRepeatable(t *testing.T) {
	ctx := context.Background()
	registry := group.NewRegistry(memory.NewGroupStore(), nil)
	seed := &seedData{CreatedBy: 1000, Groups: []string{"ECO-22", " eco-22 ", "", "ECO-22"}}

	summary, err := seedGroups(ctx, registry, seed, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ECO-22", "eco-22"}, summary.Created)
	assert.Equal(t, []string{"ECO-22"}, summary.Skipped)

	summary, err = seedGroups(ctx, registry, seed, false)
	require.NoError(t, err)
	assert.Empty(t, summary.Created)
	assert.Len(t, summary.Skipped, 3)
}

func TestSeedGroupsDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	registry := group.NewRegistry(memory.NewGroupStore(), nil)
	_, err := registry.Create(ctx, "A", 1)
	require.NoError(t, err)

	summary, err := seedGroups(ctx, registry, &seedData{Groups: []string{"A", "B"}}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, summary.Created)
	assert.Equal(t, []string{"A"}, summary.Skipped)

	exists, err := registry.Exists(ctx, "B")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSeedGroupsRejectsNamesWithSpaces(t *testing.T) {
	registry := group.NewRegistry(memory.NewGroupStore(), nil)

	summary, err := seedGroups(context.Background(), registry, &seedData{Groups: []string{"A", "ECO 22"}}, false)
	require.ErrorContains(t, err, "contains whitespace")
	assert.Equal(t, []string{"A"}, summary.Created)
}
