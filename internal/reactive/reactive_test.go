package reactive

import "testing"

func TestSignalNotifiesOnChangeOnly(t *testing.T) {
	s := NewSignal(0)
	calls := 0
	remove := s.AddListener(func() { calls++ })
	s.Set(1)
	s.Set(1)
	s.Update(func(v int) int { return v + 1 })
	if calls != 2 || s.Get() != 2 {
		t.Fatalf("calls=%d value=%d", calls, s.Get())
	}
	remove()
	remove()
	s.Set(3)
	if calls != 2 || s.Listeners() != 0 {
		t.Fatalf("listener not removed: calls=%d listeners=%d", calls, s.Listeners())
	}
}

func TestListenersFireInRegistrationOrder(t *testing.T) {
	s := NewSignal("a")
	var order []int
	s.AddListener(func() { order = append(order, 1) })
	rm := s.AddListener(func() { order = append(order, 2) })
	s.AddListener(func() { order = append(order, 3) })
	rm()
	s.Set("b")
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Fatalf("order=%v", order)
	}
}

func TestComputedFollowsSources(t *testing.T) {
	a := NewSignal(2)
	b := NewSignal(3)
	sum := NewComputed(func() int { return a.Get() + b.Get() }, a, b)
	if sum.Value() != 5 {
		t.Fatalf("initial=%v", sum.Value())
	}
	fired := 0
	sum.AddListener(func() { fired++ })
	a.Set(4)
	if sum.Get() != 7 || fired != 1 {
		t.Fatalf("sum=%d fired=%d", sum.Get(), fired)
	}
	// Each source change alters the sum, so both notify.
	a.Set(3)
	b.Set(4)
	if fired != 3 {
		t.Fatalf("fired=%d", fired)
	}
	sum.Dispose()
	a.Set(100)
	if sum.Get() != 7 || a.Listeners() != 0 {
		t.Fatalf("dispose failed: sum=%d", sum.Get())
	}
}
