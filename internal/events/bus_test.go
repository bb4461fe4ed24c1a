package events

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(EntrySaved, func(e *Event) {
		received = append(received, e)
	})

	bus.Emit(EntrySaved, "entries", map[string]interface{}{"id": int64(1), "entry_date": "2025-03-01"})
	bus.Emit(StoreReset, "settings", nil) // no subscriber, must not reach the handler

	require.Len(t, received, 1)
	assert.Equal(t, EntrySaved, received[0].Type)
	assert.Equal(t, "entries", received[0].Module)
	assert.Equal(t, "2025-03-01", received[0].Data["entry_date"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBus_MultipleHandlersForSameType(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	count := 0
	bus.Subscribe(BackupCompleted, func(*Event) { count++ })
	bus.Subscribe(BackupCompleted, func(*Event) { count++ })

	bus.Emit(BackupCompleted, "backup", nil)

	assert.Equal(t, 2, count)
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var types []EventType
	bus.SubscribeAll(func(e *Event) { types = append(types, e.Type) })

	bus.Emit(EntrySaved, "entries", nil)
	bus.Emit(StoreReset, "settings", nil)
	bus.Emit(BackupCompleted, "backup", nil)

	assert.Equal(t, []EventType{EntrySaved, StoreReset, BackupCompleted}, types)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var mu sync.Mutex
	count := 0
	bus.Subscribe(EntrySaved, func(*Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(EntrySaved, "entries", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, count)
}
