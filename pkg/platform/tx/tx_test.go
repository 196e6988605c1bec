package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromReturnsNothingOnPlainContext(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestWithTxIgnoresNil(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestPassthroughRunsWithTheSameContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var seen any
	err := Passthrough{}.Run(ctx, func(ctx context.Context) error {
		seen = ctx.Value(key{})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "marker", seen)
}

func TestPassthroughPropagatesTheFunctionError(t *testing.T) {
	boom := errors.New("boom")
	err := Passthrough{}.Run(context.Background(), func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
