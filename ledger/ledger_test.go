package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poiesic/jobtrail/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		known    []core.ID
		upstream []core.ID
		want     []core.ID
	}{
		{
			name:     "first run treats everything as new",
			known:    nil,
			upstream: []core.ID{"a", "b", "c"},
			want:     []core.ID{"a", "b", "c"},
		},
		{
			name:     "empty upstream",
			known:    []core.ID{"a"},
			upstream: nil,
			want:     []core.ID{},
		},
		{
			name:     "only unseen ids in upstream order",
			known:    []core.ID{"b"},
			upstream: []core.ID{"c", "b", "a"},
			want:     []core.ID{"c", "a"},
		},
		{
			name:     "duplicates collapse",
			known:    nil,
			upstream: []core.ID{"a", "a", "b", "a"},
			want:     []core.ID{"a", "b"},
		},
		{
			name:     "comparison uses normalized form",
			known:    []core.ID{" 00123 "},
			upstream: []core.ID{"00123", "123"},
			want:     []core.ID{"123"},
		},
		{
			name:     "nothing new",
			known:    []core.ID{"a", "b"},
			upstream: []core.ID{"b", "a"},
			want:     []core.ID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(NewSet(tt.known...), tt.upstream)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Delta() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDelta_SizeProperty(t *testing.T) {
	known := NewSet[core.ID]("1", "3", "5", "7")
	upstream := []core.ID{"1", "2", "3", "4", "5", "6"}

	delta := Delta(known, upstream)

	intersection := 0
	for _, id := range upstream {
		if known.Contains(id) {
			intersection++
		}
	}
	assert.Equal(t, len(upstream)-intersection, len(delta))
}

func TestDelta_DoesNotMutateKnown(t *testing.T) {
	known := NewSet[core.ID]("a")
	_ = Delta(known, []core.ID{"b", "c"})
	assert.Equal(t, 1, known.Len())
}

func TestSet_Union(t *testing.T) {
	base := NewSet("x", "y")
	grown := base.Union("z", "", "x")

	assert.Equal(t, 2, base.Len(), "union must not modify the receiver")
	assert.Equal(t, []string{"x", "y", "z"}, grown.Keys())
}

func TestSyncSet_ConcurrentAdd(t *testing.T) {
	s := NewSyncSet(NewSet[core.ID]("seed"))

	var wg sync.WaitGroup
	added := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			added <- s.Add(core.ID(fmt.Sprintf("id-%d", i%100)))
		}(i)
	}
	wg.Wait()
	close(added)

	firstAdds := 0
	for ok := range added {
		if ok {
			firstAdds++
		}
	}

	require.Equal(t, 100, firstAdds, "each id should be reported new exactly once")
	snapshot := s.Snapshot()
	assert.Equal(t, 101, snapshot.Len())
	assert.True(t, snapshot.Contains("seed"))
	assert.False(t, s.Add("seed"))
}
