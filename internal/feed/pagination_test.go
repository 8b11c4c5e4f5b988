package feed

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateSplitsIntoPages(t *testing.T) {
	gdb := openTestDB(t)
	author := createUser(t, gdb, "leo")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		createPost(t, gdb, author, nil, "post "+strconv.Itoa(i), base.Add(time.Duration(i)*time.Second))
	}

	pg, err := Fetch(gdb, Global(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, pg.Items, 10)
	assert.Equal(t, 1, pg.Number)
	assert.EqualValues(t, 25, pg.Total)
	assert.Equal(t, 3, pg.TotalPages)
	assert.False(t, pg.HasPrev)
	assert.True(t, pg.HasNext)
	assert.Equal(t, "post 24", pg.Items[0].Text)

	pg, err = Fetch(gdb, Global(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, pg.Items, 5)
	assert.True(t, pg.HasPrev)
	assert.False(t, pg.HasNext)
	assert.Equal(t, "post 0", pg.Items[4].Text)
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	gdb := openTestDB(t)
	author := createUser(t, gdb, "leo")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		createPost(t, gdb, author, nil, "post "+strconv.Itoa(i), base.Add(time.Duration(i)*time.Second))
	}

	pg, err := Fetch(gdb, Global(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Number)
	assert.Len(t, pg.Items, 10)

	pg, err = Fetch(gdb, Global(), -3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Number)

	pg, err = Fetch(gdb, Global(), 99, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, pg.Number)
	assert.Len(t, pg.Items, 2)
}

func TestPaginateEmptyFeed(t *testing.T) {
	gdb := openTestDB(t)

	pg, err := Fetch(gdb, Global(), 5, 10)
	require.NoError(t, err)
	assert.Empty(t, pg.Items)
	assert.Equal(t, 1, pg.Number)
	assert.Equal(t, 1, pg.TotalPages)
	assert.False(t, pg.HasPrev)
	assert.False(t, pg.HasNext)
}

func TestPaginateExactMultiple(t *testing.T) {
	gdb := openTestDB(t)
	author := createUser(t, gdb, "leo")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 20; i++ {
		createPost(t, gdb, author, nil, "post "+strconv.Itoa(i), base.Add(time.Duration(i)*time.Second))
	}

	pg, err := Fetch(gdb, Global(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, pg.TotalPages)
	assert.Len(t, pg.Items, 10)
	assert.False(t, pg.HasNext)
}
