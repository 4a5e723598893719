package flowtable

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
)

func testPeer() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
}

func TestGetOrCreateCreatesOnce(t *testing.T) {
	table := New()
	key := NewKey(0, testPeer())

	var calls int32
	create := func() (*net.UDPConn, *net.UDPAddr, error) {
		atomic.AddInt32(&calls, 1)
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
		return conn, testPeer(), err
	}

	e1, created1, err := table.GetOrCreate(key, create)
	if err != nil {
		t.Fatal(err)
	}
	if !created1 {
		t.Fatal("expected first call to create")
	}

	e2, created2, err := table.GetOrCreate(key, create)
	if err != nil {
		t.Fatal(err)
	}
	if created2 {
		t.Fatal("expected second call to reuse the existing entry")
	}
	if e1 != e2 {
		t.Fatal("expected the same entry back")
	}
	if calls != 1 {
		t.Fatalf("create was invoked %d times, want 1", calls)
	}
}

func TestGetOrCreateConcurrentSingleWinner(t *testing.T) {
	table := New()
	key := NewKey(0, testPeer())

	const n = 50
	var calls int32
	var wg sync.WaitGroup
	results := make([]*Entry, n)
	createdFlags := make([]bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, created, err := table.GetOrCreate(key, func() (*net.UDPConn, *net.UDPAddr, error) {
				atomic.AddInt32(&calls, 1)
				conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
				return conn, testPeer(), err
			})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = entry
			createdFlags[i] = created
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("create was invoked %d times, want exactly 1", calls)
	}
	createdCount := 0
	for i := 0; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("not every goroutine observed the same entry")
		}
		if createdFlags[i] {
			createdCount++
		}
	}
	if createdCount != 1 {
		t.Fatalf("expected exactly one goroutine to see created == true, got %d", createdCount)
	}
}

func TestRemove(t *testing.T) {
	table := New()
	key := NewKey(0, testPeer())
	_, _, err := table.GetOrCreate(key, func() (*net.UDPConn, *net.UDPAddr, error) {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
		return conn, testPeer(), err
	})
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Fatalf("got %d flows, want 1", table.Len())
	}

	table.Remove(key)
	if table.Len() != 0 {
		t.Fatalf("got %d flows after remove, want 0", table.Len())
	}

	// Removing an already-absent key must not panic or error.
	table.Remove(key)
}

func TestGetOrCreatePropagatesError(t *testing.T) {
	table := New()
	key := NewKey(0, testPeer())

	_, created, err := table.GetOrCreate(key, func() (*net.UDPConn, *net.UDPAddr, error) {
		return nil, nil, errCreate
	})
	if err == nil {
		t.Fatal("expected the create error to propagate")
	}
	if created {
		t.Fatal("created must be false on error")
	}
	if table.Len() != 0 {
		t.Fatal("a failed create must not leave an entry behind")
	}
}

func TestNotifyDataInCoalesces(t *testing.T) {
	e := newEntry(nil, testPeer())
	e.NotifyDataIn()
	e.NotifyDataIn()
	e.NotifyDataIn()

	select {
	case <-e.DataIn():
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-e.DataIn():
		t.Fatal("expected notifications to have coalesced into one")
	default:
	}
}

func TestAssured(t *testing.T) {
	e := newEntry(nil, testPeer())
	if e.Assured() {
		t.Fatal("a fresh entry must not be assured")
	}
	e.CountIn()
	if e.Assured() {
		t.Fatal("one packet in one direction must not be assured")
	}
	e.CountOut()
	if e.Assured() {
		t.Fatal("one packet each direction must not be assured yet")
	}
	e.CountIn()
	if !e.Assured() {
		t.Fatal("two packets in and one out must be assured")
	}
}

var errCreate = &createError{"boom"}

type createError struct{ msg string }

func (e *createError) Error() string { return e.msg }
