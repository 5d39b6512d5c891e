package llmclassify

import (
	"context"
	"testing"
	"time"

	"github.com/packsafe/previewcore/internal/model"
)

func TestCacheGetPutRoundTripsWithoutRedis(t *testing.T) {
	c := NewCache(time.Minute, nil)
	ctx := context.Background()
	draft := model.ClassificationDraft{Canonical: model.Canonical("lighter")}

	if _, ok := c.get(ctx, "k1"); ok {
		t.Fatal("expected miss before put")
	}

	c.put(ctx, "k1", draft)

	got, ok := c.get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Canonical != draft.Canonical {
		t.Errorf("got canonical %s, want %s", got.Canonical, draft.Canonical)
	}
}

func TestCacheExpiresEntriesAfterTTL(t *testing.T) {
	c := NewCache(time.Millisecond, nil)
	ctx := context.Background()
	draft := model.ClassificationDraft{Canonical: model.Canonical("lighter")}

	c.put(ctx, "k1", draft)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.get(ctx, "k1"); ok {
		t.Error("expected entry to have expired")
	}
}
