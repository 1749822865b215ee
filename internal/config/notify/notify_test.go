package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeSet, "set"},
		{ChangeReset, "reset"},
		{ChangeReload, "reload"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ct.String())
	}
}

func TestChange_Key(t *testing.T) {
	assert.Equal(t, "mymod.display.scale", Change{ModID: "mymod", Path: "display.scale"}.Key())
	assert.Equal(t, "mymod", Change{ModID: "mymod", Type: ChangeReload}.Key())
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var received atomic.Int32
	sub := n.Subscribe(func(Change) { received.Add(1) })

	n.NotifySet("a", "x", 1, 2, SourceUser)
	n.NotifySet("b", "y", 1, 2, SourceUser)
	assert.Equal(t, int32(2), received.Load())

	sub.Unsubscribe()
	n.NotifySet("a", "x", 2, 3, SourceUser)
	assert.Equal(t, int32(2), received.Load())

	// Unsubscribe again should be safe
	sub.Unsubscribe()
}

func TestNotifier_SubscribePath(t *testing.T) {
	n := New()
	defer n.Close()

	var display, other, whole atomic.Int32
	n.SubscribePath("mymod", "display", func(Change) { display.Add(1) })
	n.SubscribePath("othermod", "display", func(Change) { other.Add(1) })
	n.SubscribeMod("MyMod", func(Change) { whole.Add(1) })

	n.NotifySet("mymod", "display.scale", 1, 2, SourceUser)
	n.NotifySet("mymod", "display", nil, nil, SourceUser)
	n.NotifySet("mymod", "displayMode", 1, 2, SourceUser)
	n.NotifySet("mymod", "volume", 1, 2, SourceUser)

	assert.Equal(t, int32(2), display.Load())
	assert.Equal(t, int32(0), other.Load(), "paths are namespaced by mod")
	assert.Equal(t, int32(4), whole.Load(), "mod ids are case-folded")
}

func TestNotifier_NotifySet(t *testing.T) {
	n := New()
	defer n.Close()

	var got Change
	n.Subscribe(func(c Change) { got = c })

	n.NotifySet("mymod", "volume", 50.0, 75.0, SourceUser)

	assert.Equal(t, Change{
		ModID:    "mymod",
		Path:     "volume",
		Type:     ChangeSet,
		OldValue: 50.0,
		NewValue: 75.0,
		Source:   SourceUser,
	}, got)
}

func TestNotifier_NotifyReset(t *testing.T) {
	n := New()
	defer n.Close()

	var got Change
	n.Subscribe(func(c Change) { got = c })

	n.NotifyReset("mymod", "volume", 75.0, 50.0)

	assert.Equal(t, ChangeReset, got.Type)
	assert.Equal(t, SourceReset, got.Source)
	assert.Equal(t, 50.0, got.NewValue)
}

func TestNotifier_NotifyReload(t *testing.T) {
	n := New()
	defer n.Close()

	var global, path, other atomic.Bool
	n.Subscribe(func(c Change) { global.Store(c.Type == ChangeReload) })
	n.SubscribePath("mymod", "display", func(c Change) { path.Store(c.Type == ChangeReload) })
	n.SubscribePath("othermod", "display", func(Change) { other.Store(true) })

	n.NotifyReload("mymod", SourceFile)

	assert.True(t, global.Load())
	assert.True(t, path.Load(), "reload reaches paths inside the mod")
	assert.False(t, other.Load())
}

func TestNotifier_Async(t *testing.T) {
	n := New(WithAsync(100))
	defer n.Close()
	require.True(t, n.async)

	var received atomic.Int32
	n.Subscribe(func(Change) { received.Add(1) })

	n.NotifySet("mymod", "a", nil, 1, SourceUser)
	n.NotifySet("mymod", "b", nil, 1, SourceUser)

	assert.Eventually(t, func() bool { return received.Load() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestNotifier_AsyncDrainsOnClose(t *testing.T) {
	n := New(WithAsync(10))

	var received atomic.Int32
	n.Subscribe(func(Change) { received.Add(1) })
	for i := 0; i < 5; i++ {
		n.NotifySet("mymod", "a", nil, i, SourceUser)
	}
	n.Close()

	assert.Equal(t, int32(5), received.Load())
}

func TestBatch(t *testing.T) {
	n := New()
	defer n.Close()

	var mu sync.Mutex
	var changes []Change
	n.Subscribe(func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	batch := n.NewBatch()
	batch.Add(Change{ModID: "mymod", Path: "a", Type: ChangeReset})
	batch.Add(Change{ModID: "mymod", Path: "b", Type: ChangeReset})
	assert.Equal(t, 2, batch.Len())

	mu.Lock()
	assert.Empty(t, changes, "nothing sent before Commit")
	mu.Unlock()

	batch.Commit()
	assert.Equal(t, 0, batch.Len())

	mu.Lock()
	require.Len(t, changes, 2)
	assert.Equal(t, "a", changes[0].Path)
	mu.Unlock()

	batch.Add(Change{ModID: "mymod", Path: "c"})
	batch.Discard()
	batch.Commit()
	mu.Lock()
	assert.Len(t, changes, 2)
	mu.Unlock()
}

func TestIsParentPath(t *testing.T) {
	tests := []struct {
		parent string
		child  string
		want   bool
	}{
		{"mymod", "mymod.volume", true},
		{"mymod", "mymod.display.scale", true},
		{"", "mymod", true},
		{"mymod", "mymod", false},
		{"mymod", "othermod", false},
		{"mymod", "mymodextra.volume", false},
		{"mymod.display", "mymod.displayMode", false},
		{"mymod.display", "mymod.display.scale", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isParentPath(tt.parent, tt.child), "%q in %q", tt.child, tt.parent)
	}
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	n := New()
	defer n.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Subscribe(func(Change) { count.Add(1) })
		}()
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n.NotifySet("mymod", "x", nil, i, SourceUser)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(100), count.Load())
}

func TestNotifier_CloseIdempotent(t *testing.T) {
	for _, n := range []*Notifier{New(), New(WithAsync(100))} {
		n.Close()
		n.Close()

		// Notify after close must not panic or block.
		n.NotifySet("mymod", "x", nil, 1, SourceUser)
	}
}
