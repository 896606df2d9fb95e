package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu      sync.Mutex
	current int64
	err     error
	calls   int
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	var increment int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	m.current += increment
	return &mockRow{val: m.current}
}

var jan2025 = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	q := &mockQuerier{}
	g := New(q)
	cfg := DefaultConfig("CAT")

	first, err := g.Next(context.Background(), cfg, nil, jan2025)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if first != "CAT-2025-00001" {
		t.Errorf("first = %s, want CAT-2025-00001", first)
	}

	second, _ := g.Next(context.Background(), cfg, nil, jan2025)
	if second != "CAT-2025-00002" {
		t.Errorf("second = %s, want CAT-2025-00002", second)
	}
	if q.calls != 2 {
		t.Errorf("db calls = %d, want 2 (one per strict number)", q.calls)
	}
}

func TestNext_Cached(t *testing.T) {
	q := &mockQuerier{}
	g := New(q)
	cfg := Config{Prefix: "EXP", PadWidth: 4, ResetPeriod: "never"}
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for i := 1; i <= 15; i++ {
		got, err := g.Next(context.Background(), cfg, opts, jan2025)
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		want := map[int]string{1: "EXP-0001", 10: "EXP-0010", 11: "EXP-0011", 15: "EXP-0015"}[i]
		if want != "" && got != want {
			t.Errorf("number %d = %s, want %s", i, got, want)
		}
	}
	// 15 numbers from ranges of 10 need exactly two reservations.
	if q.calls != 2 {
		t.Errorf("db calls = %d, want 2", q.calls)
	}
}

func TestNext_CachedConcurrent(t *testing.T) {
	q := &mockQuerier{}
	g := New(q)
	cfg := Config{Prefix: "EXP", ResetPeriod: "never"}
	opts := &Options{Strategy: StrategyCached, RangeSize: 25}

	const n = 100
	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := g.Next(context.Background(), cfg, opts, jan2025)
			if err != nil {
				t.Errorf("Next failed: %v", err)
				return
			}
			if _, dup := seen.LoadOrStore(num, true); dup {
				t.Errorf("duplicate number %s", num)
			}
		}()
	}
	wg.Wait()
}

func TestNext_SeriesKeys(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"yearly", Config{Prefix: "CAT", ResetPeriod: "year"}, "CAT_2025"},
		{"monthly", Config{Prefix: "CAT", ResetPeriod: "month"}, "CAT_2025_01"},
		{"never", Config{Prefix: "CAT", ResetPeriod: "never"}, "CAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seriesKey(tt.cfg, jan2025); got != tt.want {
				t.Errorf("seriesKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNext_DBError(t *testing.T) {
	g := New(&mockQuerier{err: errors.New("boom")})
	if _, err := g.Next(context.Background(), DefaultConfig("CAT"), nil, jan2025); err == nil {
		t.Error("expected error from failed sequence query")
	}
}

func TestSetNext(t *testing.T) {
	q := &mockQuerier{}
	g := New(q)
	cfg := Config{Prefix: "EXP", ResetPeriod: "never"}

	if err := g.SetNext(context.Background(), cfg, jan2025, 500); err != nil {
		t.Fatalf("SetNext failed: %v", err)
	}
	// The cached range is invalidated, forcing a fresh reservation.
	if _, ok := g.ranges["EXP"]; ok {
		t.Error("cached range should be dropped after SetNext")
	}
}
