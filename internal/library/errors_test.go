package library

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrDuplicate))
	assert.False(t, errors.Is(ErrNotFound, ErrConstraint))
	assert.False(t, errors.Is(ErrDuplicate, ErrConstraint))
}

func TestErrors_CanBeWrapped(t *testing.T) {
	wrapped := fmt.Errorf("asset 123: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestMapSQLiteError(t *testing.T) {
	assert.Nil(t, mapSQLiteError(nil))
	assert.ErrorIs(t, mapSQLiteError(errors.New("UNIQUE constraint failed: assets.path")), ErrDuplicate)
	assert.ErrorIs(t, mapSQLiteError(errors.New("CHECK constraint failed: media_type")), ErrConstraint)
	assert.ErrorIs(t, mapSQLiteError(fmt.Errorf("get: %w", sql.ErrNoRows)), ErrNotFound)
	other := errors.New("disk I/O error")
	assert.Equal(t, other, mapSQLiteError(other))
}
