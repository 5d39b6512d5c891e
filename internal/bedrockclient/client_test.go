package bedrockclient

import (
	"context"
	"testing"
	"time"
)

func TestUnconfiguredClientReportsNotConfigured(t *testing.T) {
	c := Unconfigured()
	if c.Configured() {
		t.Error("Unconfigured() client should report Configured() == false")
	}
}

func TestCompleteJSONErrorsWhenUnconfigured(t *testing.T) {
	c := Unconfigured()
	_, err := c.CompleteJSON(context.Background(), "sys", "user", 100, time.Second)
	if err != ErrUnconfigured {
		t.Errorf("expected ErrUnconfigured, got %v", err)
	}
}

func TestNilClientReportsNotConfigured(t *testing.T) {
	var c *Client
	if c.Configured() {
		t.Error("nil client should report Configured() == false")
	}
}
