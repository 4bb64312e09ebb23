package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailingStore(t *testing.T) {
	ctx := context.Background()
	fs := NewFailingStore(SetupTestStore(t))

	require.NoError(t, fs.Set(ctx, "k", []byte("v")))
	got, err := fs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	fs.FailGet(true).FailSet(true).FailClear(true)
	_, err = fs.Get(ctx, "k")
	require.ErrorIs(t, err, ErrInjected)
	require.ErrorIs(t, fs.Set(ctx, "k", []byte("w")), ErrInjected)
	require.ErrorIs(t, fs.Clear(ctx, "k"), ErrInjected)
	assert.Equal(t, 2, fs.Sets())

	fs.FailGet(false)
	got, err = fs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestClock(t *testing.T) {
	c := NewClock(Monday)
	assert.Equal(t, Monday, c.Now())
	c.Advance(time.Hour)
	assert.Equal(t, Monday.Add(time.Hour), c.Now())
}

func TestObservationBuilder(t *testing.T) {
	b := NewObservation().
		WithMerchant("Foo Mart").
		WithDescription("misc").
		WithAmount("42").
		WithID("txn-1")

	obs := b.Build()
	assert.Equal(t, "Foo Mart", obs.Merchant)
	assert.Equal(t, "misc", obs.Description)
	assert.Equal(t, "42", obs.Amount.String())
	assert.Equal(t, "txn-1", obs.ID)
	assert.Equal(t, Monday, obs.Date)

	labeled := b.Labeled(model.CategoryEntertainment)
	assert.Equal(t, model.CategoryEntertainment, labeled.Category)
	assert.Equal(t, obs, labeled.Observation)
}
