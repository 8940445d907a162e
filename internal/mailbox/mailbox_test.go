package mailbox

import (
	"testing"
	"time"
)

func TestSendRecvFIFO(t *testing.T) {
	m := New[int]()
	m.Send(1)
	m.Send(2)
	m.Send(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := m.Recv()
		if !ok {
			t.Fatalf("Recv() ok = false, want true")
		}
		if got != want {
			t.Fatalf("Recv() = %d, want %d", got, want)
		}
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	m := New[string]()
	done := make(chan string, 1)

	go func() {
		v, ok := m.Recv()
		if !ok {
			done <- "closed"
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	m.Send("hello")

	select {
	case got := <-done:
		if got != "hello" {
			t.Fatalf("Recv() = %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Send")
	}
}

func TestCloseDrainsThenReportsFalse(t *testing.T) {
	m := New[int]()
	m.Send(1)
	m.Send(2)
	m.Close()

	if got, ok := m.Recv(); !ok || got != 1 {
		t.Fatalf("Recv() = (%d, %v), want (1, true)", got, ok)
	}
	if got, ok := m.Recv(); !ok || got != 2 {
		t.Fatalf("Recv() = (%d, %v), want (2, true)", got, ok)
	}
	if _, ok := m.Recv(); ok {
		t.Fatal("Recv() ok = true after drain, want false")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	m := New[int]()
	m.Close()
	if m.Send(1) {
		t.Fatal("Send() after Close = true, want false")
	}
}
