package stream

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalscope/internal/event"
)

func emit(i int) event.Event {
	return event.NewSignalEmit(fmt.Sprintf("C.s%d", i), i, time.UnixMilli(int64(i)), nil)
}

func drain(s *Subscription) []event.Event {
	var out []event.Event
	for {
		select {
		case e, ok := <-s.C():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestSubscriberSeesOnlyLaterEvents(t *testing.T) {
	b := New()
	b.Publish(emit(0))
	s := b.Subscribe(8)
	defer s.Close()
	b.Publish(emit(1))
	b.Publish(emit(2))

	got := drain(s)
	require.Len(t, got, 2)
	assert.Equal(t, "C.s1", got[0].ID)
	assert.Equal(t, "C.s2", got[1].ID)
}

func TestDropNewKeepsOrderAndCounts(t *testing.T) {
	b := New()
	s := b.Subscribe(2)
	defer s.Close()
	for i := 0; i < 5; i++ {
		b.Publish(emit(i))
	}
	got := drain(s)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Value)
	assert.Equal(t, 1, got[1].Value)
	assert.Equal(t, uint64(3), s.Dropped())
}

func TestSlowSubscriberDoesNotAffectOthers(t *testing.T) {
	b := New()
	slow := b.Subscribe(1)
	fast := b.Subscribe(16)
	defer slow.Close()
	defer fast.Close()
	for i := 0; i < 10; i++ {
		b.Publish(emit(i))
	}
	assert.Len(t, drain(fast), 10)
	assert.Equal(t, uint64(0), fast.Dropped())
	assert.Equal(t, uint64(9), slow.Dropped())
}

func TestCloseSubscriptionIsIdempotent(t *testing.T) {
	b := New()
	s := b.Subscribe(0)
	assert.Equal(t, 1, b.Len())
	assert.NotEmpty(t, s.ID())
	s.Close()
	s.Close()
	assert.Equal(t, 0, b.Len())
	_, ok := <-s.C()
	assert.False(t, ok)
	b.Publish(emit(1))
}

func TestBroadcasterClose(t *testing.T) {
	b := New()
	s1 := b.Subscribe(1)
	b.Close()
	b.Close()
	_, ok := <-s1.C()
	assert.False(t, ok)
	s1.Close()

	late := b.Subscribe(1)
	_, ok = <-late.C()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}

func TestPublishWithNoSubscribers(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish(emit(1)) })
}
