package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(NewEventLog(setupTestDB(t)), testLogger())
	defer bus.Close()

	ch := bus.Subscribe(EventDownloadStarted, 10)

	e := &DownloadStarted{
		BaseEvent: NewBaseEvent(EventDownloadStarted, EntityDownload, 0),
		SourceURL: "https://www.instagram.com/reel/abc123/",
		Quality:   "best",
	}
	require.NoError(t, bus.Publish(context.Background(), e))

	select {
	case received := <-ch:
		assert.Equal(t, EventDownloadStarted, received.EventType())
		assert.Equal(t, "best", received.(*DownloadStarted).Quality)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil, testLogger())
	defer bus.Close()

	ch := bus.SubscribeAll(10)

	require.NoError(t, bus.Publish(context.Background(), &AssetImported{BaseEvent: NewBaseEvent(EventAssetImported, EntityAsset, 1)}))
	require.NoError(t, bus.Publish(context.Background(), &StatusSaved{BaseEvent: NewBaseEvent(EventStatusSaved, EntityStatus, 2)}))

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case e := <-ch:
			got = append(got, e.EventType())
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for events")
		}
	}
	assert.Equal(t, []string{EventAssetImported, EventStatusSaved}, got)
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewBus(nil, testLogger())
	defer bus.Close()

	ch := bus.Subscribe(EventDownloadFailed, 10)
	require.NoError(t, bus.Publish(context.Background(), &DownloadStarted{BaseEvent: NewBaseEvent(EventDownloadStarted, EntityDownload, 0)}))

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.EventType())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_FullChannelDrops(t *testing.T) {
	bus := NewBus(nil, testLogger())
	defer bus.Close()

	ch := bus.Subscribe(EventAssetImported, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), &AssetImported{BaseEvent: NewBaseEvent(EventAssetImported, EntityAsset, int64(i))}))
	}

	assert.Len(t, ch, 1)
	first := <-ch
	assert.Equal(t, int64(0), first.EntityID())
}

func TestBus_Persists(t *testing.T) {
	log := NewEventLog(setupTestDB(t))
	bus := NewBus(log, testLogger())
	defer bus.Close()

	require.NoError(t, bus.Publish(context.Background(), &StatusConnected{
		BaseEvent: NewBaseEvent(EventStatusConnected, EntityStatus, 0),
		Variant:   "com.whatsapp",
	}))

	recent, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, EventStatusConnected, recent[0].EventType)
	assert.Contains(t, recent[0].Payload, "com.whatsapp")
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, testLogger())
	defer bus.Close()

	typed := bus.Subscribe(EventAssetDeleted, 1)
	all := bus.SubscribeAll(1)

	bus.Unsubscribe(typed)
	bus.Unsubscribe(all)

	_, ok := <-typed
	assert.False(t, ok, "typed channel should be closed")
	_, ok = <-all
	assert.False(t, ok, "all channel should be closed")

	// Publishing after unsubscribe must not panic.
	require.NoError(t, bus.Publish(context.Background(), &AssetDeleted{BaseEvent: NewBaseEvent(EventAssetDeleted, EntityAsset, 1)}))
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := NewBus(nil, testLogger())
	ch := bus.SubscribeAll(1)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, bus.Publish(context.Background(), &AssetDeleted{BaseEvent: NewBaseEvent(EventAssetDeleted, EntityAsset, 1)}))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil, testLogger())
	defer bus.Close()

	ch := bus.SubscribeAll(100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = bus.Publish(context.Background(), &AssetImported{BaseEvent: NewBaseEvent(EventAssetImported, EntityAsset, id)})
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, ch, 50)
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	bus := NewBus(nil, testLogger())
	require.NoError(t, bus.Close())

	ch := bus.Subscribe(EventDownloadFailed, 1)
	_, ok := <-ch
	assert.False(t, ok)

	bus.Unsubscribe(ch)
}
