package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var loads int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, _ := g.Do("introspect:token-1", func() (any, error) {
				atomic.AddInt32(&loads, 1)
				time.Sleep(20 * time.Millisecond)
				return "principal", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if val != "principal" {
				t.Errorf("unexpected value: %v", val)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected loader to run once, got %d", got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	var g SingleFlight
	var loads int32

	for i := 0; i < 3; i++ {
		_, _, shared := g.Do("introspect:token-2", func() (any, error) {
			atomic.AddInt32(&loads, 1)
			return nil, nil
		})
		if shared {
			t.Fatalf("sequential call %d should not be shared", i)
		}
	}

	if got := atomic.LoadInt32(&loads); got != 3 {
		t.Fatalf("expected loader to run each time, got %d", got)
	}
}
