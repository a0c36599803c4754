package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewAreaRepository(pool))
	assert.NotNil(t, NewReservationRepository(pool))
	assert.NotNil(t, NewPriceRepository(pool))
	assert.NotNil(t, NewChargeRepository(pool))
	assert.NotNil(t, NewSessionRepository(pool))
}
