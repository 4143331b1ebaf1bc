package events_test

import (
	"testing"

	"github.com/ardanlabs/powrace/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestSend(t *testing.T) {
	t.Log("Given the need to fan out events to receivers.")
	{
		evts := events.New()
		a := evts.Acquire("a")
		b := evts.Acquire("b")

		if err := evts.Send(map[string]string{"type": "started"}); err != nil {
			t.Fatalf("\t%s\tShould be able to send an event: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to send an event.", success)

		for _, ch := range []<-chan []byte{a, b} {
			if got := string(<-ch); got != `{"type":"started"}` {
				t.Fatalf("\t%s\tShould receive the event as JSON: got %s", failed, got)
			}
		}
		t.Logf("\t%s\tShould receive the event as JSON.", success)

		if err := evts.Release("a"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a receiver: %v", failed, err)
		}
		if _, open := <-a; open {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		t.Logf("\t%s\tShould close a released channel.", success)

		if err := evts.Release("a"); err == nil {
			t.Fatalf("\t%s\tShould not release an unknown receiver.", failed)
		}
		t.Logf("\t%s\tShould not release an unknown receiver.", success)

		evts.Shutdown()
		if _, open := <-b; open || evts.Count() != 0 {
			t.Fatalf("\t%s\tShould close every channel on shutdown.", failed)
		}
		t.Logf("\t%s\tShould close every channel on shutdown.", success)
	}
}
