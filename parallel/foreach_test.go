package parallel

import "sync/atomic"
import "testing"

func TestForEachVisitsAll(t *testing.T) {
	for _, limit := range []int{-1, 0, 1, 3, 100} {
		var seen = make([]int32, 57)
		ForEach(len(seen), limit, func(i int) {
			atomic.AddInt32(&seen[i], 1)
		})
		for i, v := range seen {
			if v != 1 {
				t.Errorf("limit %d: index %d visited %d times", limit, i, v)
			}
		}
	}
}

func TestForEachSequentialOrder(t *testing.T) {
	var order []int
	ForEach(5, 1, func(i int) {
		order = append(order, i)
	})
	for i, v := range order {
		if i != v {
			t.Errorf("order = %v", order)
			break
		}
	}
}

func TestThreads(t *testing.T) {
	if Threads() < 1 {
		t.Errorf("threads = %d", Threads())
	}
	if CPU() == "" {
		t.Errorf("empty cpu name")
	}
}

func BenchmarkForEach(b *testing.B) {
	var sum atomic.Int64
	for i := 0; i < b.N; i++ {
		ForEach(1000, Threads(), func(i int) {
			sum.Add(int64(i))
		})
	}
}
