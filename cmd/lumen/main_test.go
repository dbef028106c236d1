package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestPollEventsStopsWhenUndrained(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()

	done := make(chan struct{})
	ch := pollEvents(screen, done)
	// more than the channel holds, so the pump blocks on send
	for i := 0; i < 70; i++ {
		screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	}
	for deadline := time.Now().Add(2 * time.Second); len(ch) < cap(ch); {
		if time.Now().After(deadline) {
			t.Fatalf("channel holds %d events", len(ch))
		}
		time.Sleep(time.Millisecond)
	}
	close(done)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("event pump still running after done closed")
		}
	}
}

func TestPollEventsClosesOnFini(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	defer close(done)
	ch := pollEvents(screen, done)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	if ev := <-ch; ev == nil {
		t.Fatal("no event forwarded")
	}
	screen.Fini()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("unexpected event after Fini")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Fini")
	}
}
