package jpool

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPool_AllocateGrowth(t *testing.T) {
	p, err := NewWide(2)
	if err != nil {
		t.Fatal(err)
	}

	// 2 -> 2*2+1 -> 2*5+1
	wantCaps := []int{2, 2, 5, 5, 5, 11}
	for n, want := range wantCaps {
		idx, err := p.allocate(1)
		if err != nil {
			t.Fatalf("allocate #%d: %v", n, err)
		}
		if int(idx) != n {
			t.Errorf("allocate #%d returned index %d", n, idx)
		}
		if p.Cap() != want {
			t.Errorf("after allocate #%d Cap() = %d, want %d", n, p.Cap(), want)
		}
	}
	if p.Grows() != 2 {
		t.Errorf("Grows() = %d, want 2", p.Grows())
	}
}

func TestPool_AllocateRuns(t *testing.T) {
	p, _ := NewMedium(0)
	base, err := p.allocate(4)
	if err != nil || base != 0 {
		t.Fatalf("allocate(4) = %d, %v", base, err)
	}
	base, err = p.allocate(3)
	if err != nil || base != 4 {
		t.Fatalf("allocate(3) = %d, %v", base, err)
	}
	if p.Used() != 7 {
		t.Errorf("Used() = %d, want 7", p.Used())
	}
	if _, err := p.allocate(0); err == nil {
		t.Error("allocate(0) succeeded")
	}
}

func TestPool_ProfileExhaustion(t *testing.T) {
	p, _ := NewNarrow(0)
	if _, err := p.allocate(255); err != nil {
		t.Fatalf("allocate(255): %v", err)
	}
	if p.Cap() != 255 {
		t.Errorf("Cap() = %d, want growth clamped to 255", p.Cap())
	}
	_, err := p.allocate(1)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("allocate past index range error = %v, want ErrPoolExhausted", err)
	}
	if p.Used() != 255 {
		t.Errorf("failed allocation changed Used() to %d", p.Used())
	}
}

func TestPool_UnmanagedExhaustion(t *testing.T) {
	buf := make([]WideNode, 3)
	p, err := NewPoolWithBuffer(buf)
	if err != nil {
		t.Fatal(err)
	}
	if p.Managed() {
		t.Error("pool over caller buffer reports Managed()")
	}
	for n := 0; n < 3; n++ {
		if _, err := p.allocate(1); err != nil {
			t.Fatalf("allocate #%d: %v", n, err)
		}
	}
	if _, err := p.allocate(1); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("allocate on full buffer error = %v, want ErrPoolExhausted", err)
	}
	if p.Cap() != 3 || p.Grows() != 0 {
		t.Errorf("unmanaged pool grew: Cap() = %d, Grows() = %d", p.Cap(), p.Grows())
	}
}

func TestPool_ResetKeepsStorage(t *testing.T) {
	p, _ := NewWide(1)
	if err := p.Decode([]byte(`[1,2,3,[4,5]]`)); err != nil {
		t.Fatal(err)
	}
	capBefore := p.Cap()
	if err := p.Reset(); err != nil {
		t.Fatal(err)
	}
	if p.Used() != 0 {
		t.Errorf("Used() after Reset = %d", p.Used())
	}
	if p.Cap() != capBefore {
		t.Errorf("Cap() after Reset = %d, want %d", p.Cap(), capBefore)
	}
	if _, ok := p.Root(); ok {
		t.Error("Root() reported a root after Reset")
	}
}

func TestPool_Free(t *testing.T) {
	p, _ := NewWide(8)
	if err := p.Decode([]byte(`{"a":true}`)); err != nil {
		t.Fatal(err)
	}
	hooks := 0
	p.onFree = append(p.onFree, func() error {
		hooks++
		return nil
	})

	if err := p.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := p.Free(); err != nil {
		t.Fatalf("second Free: %v", err)
	}
	if hooks != 1 {
		t.Errorf("on-free hook ran %d times, want 1", hooks)
	}
	if _, ok := p.Root(); ok {
		t.Error("Root() reported a root after Free")
	}
	if err := p.Decode([]byte(`1`)); !errors.Is(err, ErrFreed) {
		t.Errorf("Decode after Free error = %v, want ErrFreed", err)
	}
	if _, err := p.allocate(1); !errors.Is(err, ErrFreed) {
		t.Errorf("allocate after Free error = %v, want ErrFreed", err)
	}
	if err := p.Reset(); !errors.Is(err, ErrFreed) {
		t.Errorf("Reset after Free error = %v, want ErrFreed", err)
	}
}

func TestPool_FreeLeavesCallerBuffer(t *testing.T) {
	buf := make([]MediumNode, 4)
	p, _ := NewPoolWithBuffer(buf)
	if err := p.Decode([]byte(`[true]`)); err != nil {
		t.Fatal(err)
	}
	snapshot := append([]MediumNode(nil), buf...)
	if err := p.Free(); err != nil {
		t.Fatal(err)
	}
	for n := range buf {
		if buf[n] != snapshot[n] {
			t.Fatalf("Free modified caller buffer at %d", n)
		}
	}
}

func TestPool_Metrics(t *testing.T) {
	p, _ := NewWide(4)
	if err := p.Decode([]byte(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}
	m := p.Metrics()
	if m.Used != 4 || m.Capacity != 4 {
		t.Errorf("Used/Capacity = %d/%d, want 4/4", m.Used, m.Capacity)
	}
	if m.NodeSize != 12 || m.BytesInUse != 48 || m.BytesReserved != 48 {
		t.Errorf("sizes = %d/%d/%d, want 12/48/48", m.NodeSize, m.BytesInUse, m.BytesReserved)
	}
	if m.InputBytes != 7 {
		t.Errorf("InputBytes = %d, want 7", m.InputBytes)
	}
	if !m.Managed || m.Grows != 0 {
		t.Errorf("Managed/Grows = %v/%d", m.Managed, m.Grows)
	}
	if m.Utilization != 1 {
		t.Errorf("Utilization = %v, want 1", m.Utilization)
	}

	empty, _ := NewWide(0)
	if u := empty.Utilization(); u != 0 {
		t.Errorf("Utilization of empty pool = %v", u)
	}
}

func TestPool_LogsGrowth(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p, _ := NewWide(1, WithLogger(logger))
	if err := p.Decode([]byte(`[1,2,3,4]`)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"component=jpool", "pool grown", "decoded"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestCapacityHint(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 16},
		{0, 16},
		{80, 26},
		{8000, 1016},
	}
	for _, tt := range tests {
		if got := CapacityHint(tt.n); got != tt.want {
			t.Errorf("CapacityHint(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
