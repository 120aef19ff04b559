package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
)

// The ledger client's change feed should receive what the hub broadcasts.
func TestLedgerWSFeedsClient(t *testing.T) {
	hub := services.NewRealtimeHub()
	rc := NewRealtimeController(hub)

	r := gin.New()
	r.GET(ledger.APIPrefix+"/ws/ledger", func(c *gin.Context) { c.Set("userID", uint(5)) }, rc.LedgerWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	client := ledger.NewClient(srv.URL, "", ledger.WithLogger(quiet))

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan ledger.ChangeEvent, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- client.WatchChanges(ctx, func(ev ledger.ChangeEvent) { events <- ev })
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count(5) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(5, ledger.ChangeEvent{Kind: "ledger.changed", Op: "delete", LogID: 9})
	select {
	case ev := <-events:
		if ev.Op != "delete" || ev.LogID != 9 {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}

	cancel()
	select {
	case err := <-watchErr:
		if err != nil {
			t.Errorf("WatchChanges after cancel = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchChanges did not return")
	}
}
