package mqtt

import (
	"encoding/json"
	"testing"

	"tslad/pkg/annotation"
)

func TestSinkQueuesPayload(t *testing.T) {
	h := New()
	if h.Enabled() {
		t.Fatalf("handler without broker must be disabled")
	}
	if err := h.Connect(""); err != nil {
		t.Fatalf("connect without broker: %v", err)
	}

	if err := h.Sink("/tslad/test", "run-1").Put(annotation.New(10, 20, annotation.H)); err != nil {
		t.Fatalf("put: %v", err)
	}

	msg := <-h.C
	if msg.Topic != "/tslad/test" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}

	var p map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p["run"] != "run-1" || p["symbol"] != "H" || p["label"] != "High" || p["start"] != float64(10) || p["end"] != float64(20) {
		t.Fatalf("unexpected payload %s", msg.Payload)
	}
}

func TestDisconnectWithoutBroker(t *testing.T) {
	if err := New().Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	h := New()
	h.Start()

	sink := h.Sink("/tslad/test", "run-1")
	for i := 0; i < 20; i++ {
		if err := sink.Put(annotation.New(uint64(i), uint64(i+1), annotation.M)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := len(h.C); n != 0 {
		t.Fatalf("expected drained queue, %d messages left", n)
	}

	// a second Close must not panic on the closed channel
	if err := h.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCloseWithoutService(t *testing.T) {
	if err := New().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
