package cli

import (
	"strings"
	"testing"

	"github.com/pdfstruct/pdfstruct/pkg/cache"
)

func TestServeKeyerLocalCache(t *testing.T) {
	if k := serveKeyer("", "tenant:"); k != nil {
		t.Error("file cache should use the default keyer (nil)")
	}
}

func TestServeKeyerRedisScoping(t *testing.T) {
	k := serveKeyer("redis://localhost:6379/0", "")
	if k == nil {
		t.Fatal("redis cache should get a scoped keyer")
	}
	key := k.DocumentKey("abc", cache.DocumentKeyOpts{})
	if !strings.HasPrefix(key, "pdfstruct:") {
		t.Errorf("key = %q, want pdfstruct: prefix", key)
	}

	k = serveKeyer("redis://localhost:6379/0", "tenant1:")
	key = k.DocumentKey("abc", cache.DocumentKeyOpts{})
	if !strings.HasPrefix(key, "tenant1:") {
		t.Errorf("key = %q, want tenant1: prefix", key)
	}
}
