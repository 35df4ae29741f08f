package pg

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorChecks(t *testing.T) {
	errNotFound := errors.New("not found")
	errExists := errors.New("exists")

	uniqueViolation := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	serializationFailure := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	other := errors.New("other")

	assert.Equal(t, errNotFound, CheckNoRows(sql.ErrNoRows, errNotFound))
	assert.Equal(t, errNotFound, CheckNoRows(errors.Wrap(sql.ErrNoRows, "wrapped"), errNotFound))
	assert.Equal(t, other, CheckNoRows(other, errNotFound))
	assert.Nil(t, CheckNoRows(nil, errNotFound))

	assert.Equal(t, errExists, CheckUniqueViolation(uniqueViolation, errExists))
	assert.Equal(t, errExists, CheckUniqueViolation(errors.Wrap(uniqueViolation, "wrapped"), errExists))
	assert.Equal(t, serializationFailure, CheckUniqueViolation(serializationFailure, errExists))
	assert.Nil(t, CheckUniqueViolation(nil, errExists))

	assert.True(t, IsSerializationFailure(serializationFailure))
	assert.False(t, IsSerializationFailure(uniqueViolation))
	assert.False(t, IsSerializationFailure(nil))
}
