package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertEmpty(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %v", ev.Kind)
	default:
	}
}

func TestBus_FanOutAndFilter(t *testing.T) {
	bus := NewBus(nil)
	all := bus.Subscribe()
	projects := bus.Subscribe(ProjectAdded, ProjectDeleted)
	defer all.Close()
	defer projects.Close()

	bus.Publish(Event{Kind: TaskAdded, OwnerID: "alice"})
	bus.Publish(Event{Kind: ProjectDeleted, OwnerID: "alice", EntityID: "p1"})

	first := receive(t, all)
	second := receive(t, all)
	assert.Equal(t, TaskAdded, first.Kind)
	assert.Equal(t, ProjectDeleted, second.Kind)
	assert.Less(t, first.Sequence, second.Sequence)
	assert.False(t, first.Timestamp.IsZero())

	got := receive(t, projects)
	assert.Equal(t, ProjectDeleted, got.Kind)
	assert.Equal(t, "p1", got.EntityID)
	assertEmpty(t, projects)
}

func TestBus_CloseUnsubscribes(t *testing.T) {
	bus := NewBus(nil)
	sub := bus.Subscribe()
	other := bus.Subscribe()

	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	bus.Publish(Event{Kind: TaskAdded})
	assert.Equal(t, TaskAdded, receive(t, other).Kind)
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(nil)
	slow := bus.Subscribe()
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*3; i++ {
			bus.Publish(Event{Kind: TaskUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, slow.C, defaultBuffer)
}

func TestKindDataChange(t *testing.T) {
	assert.True(t, ProjectDeleted.DataChange())
	assert.True(t, TaskUpdated.DataChange())
	assert.False(t, SessionStarted.DataChange())
	assert.False(t, CacheRefreshed.DataChange())
}

func TestForwarderSubject(t *testing.T) {
	assert.Equal(t, "taskdash.project.deleted", NewForwarder(nil, "taskdash.", nil).Subject(ProjectDeleted))
	assert.Equal(t, "task.added", NewForwarder(nil, "", nil).Subject(TaskAdded))
}

func TestForwarderRejectsMissingConnection(t *testing.T) {
	f := NewForwarder(nil, "taskdash", nil)
	assert.Error(t, f.forward(Event{Kind: TaskAdded}))
}
