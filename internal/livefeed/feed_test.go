package livefeed

import (
	"testing"
)

func TestRingEvictsOldest(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 5; i++ {
		r.push(i)
	}

	got := r.snapshot()
	want := []int{5, 4, 3}
	if len(got) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
	if r.count() != 5 {
		t.Fatalf("count = %d, want 5", r.count())
	}
}

func TestRingSnapshotIsCopy(t *testing.T) {
	r := newRing[int](2)
	r.push(1)

	snap := r.snapshot()
	snap[0] = 99

	if r.snapshot()[0] != 1 {
		t.Fatal("snapshot aliases the internal buffer")
	}
}
