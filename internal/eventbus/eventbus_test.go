package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesProfileSubscriber(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("p1")
	defer cancel()

	bus.Publish("p1", BackupStarted, "backup started")

	ev := <-ch
	assert.Equal(t, BackupStarted, ev.Kind)
	assert.Equal(t, "p1", ev.ProfileID)
	assert.Equal(t, "backup started", ev.Message)
	assert.False(t, ev.At.IsZero())
}

func TestPublishDoesNotCrossProfiles(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("p2")
	defer cancel()

	bus.Publish("p1", BackupCompleted, "done")

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestWildcardSubscriberSeesEveryProfile(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe(AllProfiles)
	defer cancel()

	bus.Publish("p1", BackupStarted, "one")
	bus.Publish("p2", BackupFailed, "two")

	first := <-ch
	second := <-ch
	assert.Equal(t, "p1", first.ProfileID)
	assert.Equal(t, "p2", second.ProfileID)
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("p1")
	cancel()

	bus.Publish("p1", BackupStarted, "after cancel")

	_, open := <-ch
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("p1")
	defer cancel()

	for i := 0; i < cap(ch)+10; i++ {
		bus.Publish("p1", BackupProgress, "tick")
	}

	assert.Len(t, ch, cap(ch))
}

func TestPublishWithData(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("p1")
	defer cancel()

	bus.PublishWithData("p1", LogsSynced, "synced", []byte(`{"new_operations":2}`))

	ev := <-ch
	assert.JSONEq(t, `{"new_operations":2}`, string(ev.Data))
}
