package ring

import (
	"testing"
	"time"
)

func TestBuffer_Add_AssignsMonotonicIDs(t *testing.T) {
	t.Parallel()
	b := New[string](10)
	id1 := b.Add("a")
	id2 := b.Add("b")
	id3 := b.Add("c")

	if !(id1 < id2 && id2 < id3) {
		t.Errorf("ids not strictly increasing: %d %d %d", id1, id2, id3)
	}
}

func TestBuffer_Add_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()
	b := New[int](3)
	b.Add(1)
	b.Add(2)
	b.Add(3)
	b.Add(4)

	values, _ := b.ListAfter(0, nil, 10)
	if len(values) != 3 {
		t.Fatalf("len(values) = %d, want 3", len(values))
	}
	want := []int{2, 3, 4}
	for i, v := range want {
		if values[i] != v {
			t.Errorf("values[%d] = %d, want %d", i, values[i], v)
		}
	}
}

func TestBuffer_ListAfter_FiltersAndOrders(t *testing.T) {
	t.Parallel()
	b := New[int](10)
	for i := 1; i <= 5; i++ {
		b.Add(i)
	}
	even := func(v int) bool { return v%2 == 0 }

	values, lastID := b.ListAfter(0, even, 10)
	if len(values) != 2 || values[0] != 2 || values[1] != 4 {
		t.Errorf("values = %v, want [2 4]", values)
	}
	if lastID != 4 {
		t.Errorf("lastID = %d, want 4 (id of value 4)", lastID)
	}
}

func TestBuffer_ListAfter_NoMatchesReturnsRequestedAfterID(t *testing.T) {
	t.Parallel()
	b := New[int](10)
	b.Add(1)
	values, nextAfter := b.ListAfter(99, nil, 10)
	if len(values) != 0 {
		t.Errorf("expected no values, got %v", values)
	}
	if nextAfter != 99 {
		t.Errorf("nextAfter = %d, want 99", nextAfter)
	}
}

func TestBuffer_ListAfter_RespectsLimit(t *testing.T) {
	t.Parallel()
	b := New[int](100)
	for i := 0; i < 20; i++ {
		b.Add(i)
	}
	values, _ := b.ListAfter(0, nil, 5)
	if len(values) != 5 {
		t.Errorf("len(values) = %d, want 5", len(values))
	}
}

func TestBuffer_WaitForAfter_ReturnsImmediatelyWhenDataExists(t *testing.T) {
	t.Parallel()
	b := New[int](10)
	b.Add(1)

	values, _, timedOut := b.WaitForAfter(0, nil, 10, 1000)
	if timedOut {
		t.Error("expected timedOut = false")
	}
	if len(values) != 1 {
		t.Errorf("values = %v, want [1]", values)
	}
}

func TestBuffer_WaitForAfter_TimesOutWhenNothingArrives(t *testing.T) {
	t.Parallel()
	b := New[int](10)

	start := time.Now()
	values, nextAfter, timedOut := b.WaitForAfter(0, nil, 10, MinWaitMs)
	elapsed := time.Since(start)

	if !timedOut {
		t.Error("expected timedOut = true")
	}
	if len(values) != 0 {
		t.Errorf("expected no values, got %v", values)
	}
	if nextAfter != 0 {
		t.Errorf("nextAfter = %d, want 0", nextAfter)
	}
	if elapsed < MinWaitMs*time.Millisecond {
		t.Errorf("returned before timeout elapsed: %v", elapsed)
	}
}

func TestBuffer_WaitForAfter_WakesOnMatchingAdd(t *testing.T) {
	t.Parallel()
	b := New[int](10)

	resultC := make(chan struct {
		values []int
		timed  bool
	}, 1)
	go func() {
		values, _, timedOut := b.WaitForAfter(0, nil, 10, 5000)
		resultC <- struct {
			values []int
			timed  bool
		}{values, timedOut}
	}()

	time.Sleep(50 * time.Millisecond)
	b.Add(42)

	select {
	case res := <-resultC:
		if res.timed {
			t.Error("expected timedOut = false")
		}
		if len(res.values) != 1 || res.values[0] != 42 {
			t.Errorf("values = %v, want [42]", res.values)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestBuffer_Len_HighWaterMark(t *testing.T) {
	t.Parallel()
	b := New[int](2)
	b.Add(1)
	b.Add(2)
	b.Add(3)

	if got := b.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 (capacity)", got)
	}
	if got := b.HighWaterMark(); got != 3 {
		t.Errorf("HighWaterMark() = %d, want 3", got)
	}
}

func TestBuffer_New_DefaultCapacity(t *testing.T) {
	t.Parallel()
	b := New[int](0)
	if b.cap != DefaultCapacity {
		t.Errorf("cap = %d, want %d", b.cap, DefaultCapacity)
	}
}
