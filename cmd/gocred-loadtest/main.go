package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/password"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// phase selects which credential pair each worker submits.
type phase int

const (
	phaseAccept phase = iota
	phaseWrongPassword
	phaseUnknownUser
)

func (p phase) String() string {
	switch p {
	case phaseAccept:
		return "accept"
	case phaseWrongPassword:
		return "wrong-password"
	default:
		return "unknown-user"
	}
}

func main() {
	var (
		users       = flag.Int("users", 256, "number of accounts to enroll")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 2000, "verify calls per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "loadtest/users/", "credential key prefix")
		costN       = flag.Int("n", password.DefaultN, "scrypt cost parameter N")
		perRecord   = flag.Bool("per-record-salt", false, "enroll with per-record salts")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	salt, err := password.NewSalt(16)
	if err != nil {
		fmt.Fprintf(os.Stderr, "salt generation failed: %v\n", err)
		os.Exit(1)
	}

	cfg := goCred.DefaultConfig()
	cfg.KDF.N = *costN
	cfg.KDF.SaltBase64 = base64.StdEncoding.EncodeToString(salt)
	cfg.KDF.PerRecordSalt = *perRecord
	cfg.Store.KeyPrefix = *prefix
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goCred.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("enrolling %d users (N=%d)...\n", *users, *costN)
	startSeed := time.Now()
	if err := seed(ctx, engine, *users, *concurrency); err != nil {
		fmt.Fprintf(os.Stderr, "enroll failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("enrolled in %s\n", time.Since(startSeed).Round(time.Millisecond))

	results := make(map[phase]phaseStats, 3)
	for _, p := range []phase{phaseAccept, phaseWrongPassword, phaseUnknownUser} {
		results[p] = runPhase(ctx, engine, p, *users, *ops, *concurrency)
	}

	fmt.Println("---- results ----")
	for _, p := range []phase{phaseAccept, phaseWrongPassword, phaseUnknownUser} {
		printStats(p.String(), results[p])
	}

	outcomes, err := verifyOutcomes(ctx, engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metrics collection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(formatOutcomes(outcomes))
}

func emailFor(i int) string {
	return fmt.Sprintf("user-%d@loadtest.invalid", i)
}

func passwordFor(i int) string {
	return fmt.Sprintf("pw-%d-%d", i, (i*7919)%104729)
}

func seed(ctx context.Context, engine *goCred.Engine, users, concurrency int) error {
	var (
		wg       sync.WaitGroup
		cursor   int64
		once     sync.Once
		firstErr error
	)
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= users {
					return
				}
				if _, err := engine.Enroll(ctx, emailFor(i), passwordFor(i)); err != nil {
					once.Do(func() { firstErr = err })
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func runPhase(ctx context.Context, engine *goCred.Engine, p phase, users, ops, concurrency int) phaseStats {
	var (
		wg         sync.WaitGroup
		cursor     int64
		failures   int64
		mismatches int64
		latencies  = make([]time.Duration, 0, ops)
		mu         sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(users)
				email, pass, want := emailFor(idx), passwordFor(idx), true
				switch p {
				case phaseWrongPassword:
					pass, want = pass+"x", false
				case phaseUnknownUser:
					email, want = fmt.Sprintf("ghost-%d@loadtest.invalid", idx), false
				}

				t0 := time.Now()
				res, err := engine.Verify(ctx, email, pass)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else if res.Accepted != want {
					atomic.AddInt64(&mismatches, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	stats := computeStats(total, latencies, failures)
	stats.mismatches = mismatches
	return stats
}
