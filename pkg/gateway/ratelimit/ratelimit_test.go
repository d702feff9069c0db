package ratelimit

import (
	"testing"
	"time"
)

func TestAcquireRequest_TokenBucket(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 2})
	now := time.Now()

	for i := 0; i < 2; i++ {
		d := l.AcquireRequest("client-a", now)
		if !d.Allowed {
			t.Fatalf("request %d denied, want allowed within burst", i)
		}
		d.Permit.Release()
	}

	d := l.AcquireRequest("client-a", now)
	if d.Allowed {
		t.Fatalf("request beyond burst allowed, want denied")
	}
	if d.RetryAfter < 1 {
		t.Fatalf("RetryAfter = %d, want >= 1", d.RetryAfter)
	}

	// Tokens refill with time.
	d = l.AcquireRequest("client-a", now.Add(1500*time.Millisecond))
	if !d.Allowed {
		t.Fatalf("request after refill denied, want allowed")
	}
	d.Permit.Release()
}

func TestAcquireRequest_ClientsAreIndependent(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1})
	now := time.Now()

	if d := l.AcquireRequest("client-a", now); !d.Allowed {
		t.Fatalf("client-a denied")
	}
	if d := l.AcquireRequest("client-a", now); d.Allowed {
		t.Fatalf("client-a second request allowed, want denied")
	}
	if d := l.AcquireRequest("client-b", now); !d.Allowed {
		t.Fatalf("client-b denied, buckets must be per client")
	}
}

func TestAcquireRequest_ConcurrencyCap(t *testing.T) {
	l := New(Config{MaxConcurrentRequests: 1})
	now := time.Now()

	first := l.AcquireRequest("client-a", now)
	if !first.Allowed {
		t.Fatalf("first request denied")
	}

	second := l.AcquireRequest("client-a", now)
	if second.Allowed {
		t.Fatalf("second concurrent request allowed, want denied")
	}

	first.Permit.Release()
	third := l.AcquireRequest("client-a", now)
	if !third.Allowed {
		t.Fatalf("request after release denied, want allowed")
	}
	third.Permit.Release()
}

func TestAcquireRequest_UnlimitedWhenZeroConfig(t *testing.T) {
	l := New(Config{})
	now := time.Now()
	for i := 0; i < 100; i++ {
		d := l.AcquireRequest("client-a", now)
		if !d.Allowed {
			t.Fatalf("request %d denied with no limits configured", i)
		}
		d.Permit.Release()
	}
}

func TestAcquireRequest_EmptyClientKey(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1})
	now := time.Now()

	if d := l.AcquireRequest("", now); !d.Allowed {
		t.Fatalf("anonymous request denied")
	}
	if d := l.AcquireRequest("", now); d.Allowed {
		t.Fatalf("anonymous clients must share a bucket")
	}
}

func TestEntryGC(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1, MaxEntries: 2, EntryTTL: time.Minute})
	now := time.Now()

	l.AcquireRequest("client-a", now)
	l.AcquireRequest("client-b", now)
	// Hitting the cap triggers GC of stale entries before inserting.
	l.AcquireRequest("client-c", now.Add(2*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m["client-c"]; !ok {
		t.Fatalf("new client not tracked")
	}
	if len(l.m) > 2 {
		t.Fatalf("entries = %d, want <= MaxEntries", len(l.m))
	}
}

func TestPermit_ReleaseIsIdempotent(t *testing.T) {
	l := New(Config{MaxConcurrentRequests: 1})
	now := time.Now()

	d := l.AcquireRequest("client-a", now)
	d.Permit.Release()
	d.Permit.Release() // second release must not free a slot twice

	first := l.AcquireRequest("client-a", now)
	if !first.Allowed {
		t.Fatalf("request denied after release")
	}
	second := l.AcquireRequest("client-a", now)
	if second.Allowed {
		t.Fatalf("double release freed an extra slot")
	}
	first.Permit.Release()
}
