package logger

import "testing"

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		log, err := New("debug", dev)
		if err != nil {
			t.Fatalf("New(debug, %v): %v", dev, err)
		}
		if !log.Core().Enabled(-1) {
			t.Fatalf("debug level not enabled")
		}
	}
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
