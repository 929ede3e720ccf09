package mover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMoveToReview(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "a")
	writeFile(t, filepath.Join(dir, "b.jpg"), "b")

	m := New("", 2)
	results, err := m.MoveToReview(context.Background(), dir, []string{"a.jpg", "b.jpg"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.True(t, r.OK(), r.Error)
		assert.Equal(t, filepath.Join(dir, DefaultReviewDirName, r.Name), r.Destination)
		assert.NoFileExists(t, filepath.Join(dir, r.Name))
	}
	assert.Equal(t, "a", readFile(t, filepath.Join(dir, "_blurry", "a.jpg")))
}

func TestMoveToReview_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	review := filepath.Join(dir, "_review")
	require.NoError(t, os.Mkdir(review, 0755))
	writeFile(t, filepath.Join(review, "a.jpg"), "old")
	writeFile(t, filepath.Join(review, "a-1.jpg"), "older")
	writeFile(t, filepath.Join(dir, "a.jpg"), "new")

	results, err := New("_review", 1).MoveToReview(context.Background(), dir, []string{"a.jpg"})
	require.NoError(t, err)
	require.True(t, results[0].OK())

	assert.Equal(t, filepath.Join(review, "a-2.jpg"), results[0].Destination)
	assert.Equal(t, "old", readFile(t, filepath.Join(review, "a.jpg")))
	assert.Equal(t, "older", readFile(t, filepath.Join(review, "a-1.jpg")))
	assert.Equal(t, "new", readFile(t, filepath.Join(review, "a-2.jpg")))
}

func TestMoveToReview_PerFileFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.jpg"), "ok")

	results, err := New("", 4).MoveToReview(context.Background(), dir,
		[]string{"ok.jpg", "missing.jpg", "../escape.jpg", ""})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.ErrorIs(t, results[1].Err, os.ErrNotExist)
	assert.ErrorIs(t, results[2].Err, ErrInvalidName)
	assert.ErrorIs(t, results[3].Err, ErrInvalidName)
	assert.NotEmpty(t, results[1].Error)
}

func TestMoveToReview_ManyConcurrent(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("img%02d.jpg", i)
		writeFile(t, filepath.Join(dir, name), name)
		names = append(names, name)
	}

	results, err := New("", 8).MoveToReview(context.Background(), dir, names)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, r := range results {
		require.True(t, r.OK(), r.Error)
		assert.False(t, seen[r.Destination], "duplicate destination %s", r.Destination)
		seen[r.Destination] = true
		assert.Equal(t, r.Name, readFile(t, r.Destination))
	}
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "a")
	m := New("", 2)

	_, err := m.MoveToReview(context.Background(), dir, []string{"a.jpg"})
	require.NoError(t, err)

	results, err := m.Restore(context.Background(), dir, []string{"a.jpg"})
	require.NoError(t, err)
	require.True(t, results[0].OK())
	assert.Equal(t, filepath.Join(dir, "a.jpg"), results[0].Destination)
	assert.Equal(t, "a", readFile(t, filepath.Join(dir, "a.jpg")))
}

func TestRestore_NoReviewFolder(t *testing.T) {
	_, err := New("", 1).Restore(context.Background(), t.TempDir(), []string{"a.jpg"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMoveToReview_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New("", 1).MoveToReview(ctx, dir, []string{"a.jpg"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("photo.jpg"))
	for _, bad := range []string{"", ".", "..", "a/b.jpg", `a\b.jpg`} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	writeFile(t, src, "data")

	require.NoError(t, copyFile(src, filepath.Join(dir, "dst.jpg"), 0644))
	assert.Equal(t, "data", readFile(t, filepath.Join(dir, "dst.jpg")))

	// Refuses to clobber
	assert.Error(t, copyFile(src, filepath.Join(dir, "dst.jpg"), 0644))
}
