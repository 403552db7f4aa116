package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "shipped", "delivered", "cancelled"} {
		st, ok := ParseStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, Status(s), st)
	}
	for _, s := range []string{"", "canceled", "PENDING", "refunded", "unknown"} {
		_, ok := ParseStatus(s)
		assert.False(t, ok, s)
	}
}

func TestTransitionEffectSelfIsNoop(t *testing.T) {
	for st := range allStatuses {
		assert.Equal(t, EffectNone, TransitionEffect(st, st), string(st))
	}
}

func TestTransitionEffectIntoCancelledRestocks(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered} {
		assert.Equal(t, EffectRestock, TransitionEffect(from, StatusCancelled), string(from))
	}
}

func TestTransitionEffectOutOfCancelledDeducts(t *testing.T) {
	for _, to := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered} {
		assert.Equal(t, EffectDeduct, TransitionEffect(StatusCancelled, to), string(to))
	}
}

func TestTransitionEffectActiveToActiveIsNone(t *testing.T) {
	active := []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered}
	for _, from := range active {
		for _, to := range active {
			if from == to {
				continue
			}
			assert.Equal(t, EffectNone, TransitionEffect(from, to), "%s->%s", from, to)
		}
	}
}
