package hashcache

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestCache(t *testing.T) {
	addr := os.Getenv("PDFCORPUS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PDFCORPUS_TEST_REDIS_ADDR not set")
	}
	c := New(addr, "", 0)
	c.key = "pdfcorpus:test:" + uuid.NewString()
	defer c.Close()
	ctx := context.Background()
	defer c.client.Del(ctx, c.key)

	if err := c.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if seen, err := c.Seen(ctx, "abc"); err != nil || seen {
		t.Fatalf("Seen before Add = %v, %v", seen, err)
	}
	if err := c.Add(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if seen, err := c.Seen(ctx, "abc"); err != nil || !seen {
		t.Errorf("Seen after Add = %v, %v", seen, err)
	}
}
