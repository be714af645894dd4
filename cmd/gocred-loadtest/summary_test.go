package main

import (
	"context"
	"encoding/base64"
	"testing"

	goCred "github.com/MrEthical07/goCred"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestVerifyOutcomesThroughOTel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := goCred.DefaultConfig()
	cfg.KDF.N = 1024
	cfg.KDF.SaltBase64 = base64.StdEncoding.EncodeToString([]byte("loadtest-salt-16"))
	engine, err := goCred.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()
	if _, err := engine.Enroll(ctx, emailFor(0), passwordFor(0)); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	for _, pass := range []string{passwordFor(0), passwordFor(0), "nope"} {
		if _, err := engine.Verify(ctx, emailFor(0), pass); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
	}
	if _, err := engine.Verify(ctx, "ghost@loadtest.invalid", "x"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	outcomes, err := verifyOutcomes(ctx, engine)
	if err != nil {
		t.Fatalf("verifyOutcomes failed: %v", err)
	}
	if outcomes["accepted"] != 2 || outcomes["wrong_password"] != 1 || outcomes["no_such_user"] != 1 {
		t.Fatalf("unexpected outcomes: %v", outcomes)
	}

	got := formatOutcomes(map[string]int64{"b": 2, "a": 1})
	if got != "engine: a=1 b=2" {
		t.Fatalf("unexpected format %q", got)
	}
}
