package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relay-lab/state"
)

func TestDedupJanitor_Sweeps_Expired_Entries(t *testing.T) {
	req := require.New(t)
	// Given a cache whose entries expire immediately
	cache := state.NewDedupCache(time.Millisecond)
	cache.TryAdmit("m1")
	cache.TryAdmit("m2")

	janitor := NewDedupJanitor(slog.Default(), cache, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := janitor.Run(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
	req.Equal(0, cache.Len())
}
