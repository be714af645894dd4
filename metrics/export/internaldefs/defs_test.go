package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeBucketsTruncates(t *testing.T) {
	got := NormalizeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 9})
	if got[7] != 1 {
		t.Fatalf("extra buckets must be dropped, got %v", got)
	}
}

func TestDefinitionsConsistent(t *testing.T) {
	if len(HistogramBounds) != 8 || len(HistogramUpperBounds) != 7 {
		t.Fatal("bucket tables out of sync")
	}
	seen := map[string]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "gocred_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %q does not follow naming", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate counter %q", def.Name)
		}
		seen[def.Name] = true
		if def.Op == "" || def.Outcome == "" {
			t.Fatalf("counter %q has no op/outcome split", def.Name)
		}
	}
}
