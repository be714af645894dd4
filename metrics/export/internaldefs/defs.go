package internaldefs

import (
	goCred "github.com/MrEthical07/goCred"
)

// CounterDef binds an engine counter to its exported name. Op and Outcome
// split the same counter for exporters that prefer one instrument per
// operation with an outcome attribute.
type CounterDef struct {
	ID      goCred.MetricID
	Name    string
	Help    string
	Op      string
	Outcome string
}

// HistogramDef binds an engine histogram to its exported base name.
type HistogramDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goCred.MetricVerifyAccepted, Name: "gocred_verify_accepted_total", Help: "Verify calls that matched the stored hash.", Op: "verify", Outcome: "accepted"},
	{ID: goCred.MetricVerifyRejectedNoSuchUser, Name: "gocred_verify_rejected_no_such_user_total", Help: "Verify calls for an email with no record.", Op: "verify", Outcome: "no_such_user"},
	{ID: goCred.MetricVerifyRejectedWrongPassword, Name: "gocred_verify_rejected_wrong_password_total", Help: "Verify calls with a mismatched password.", Op: "verify", Outcome: "wrong_password"},
	{ID: goCred.MetricVerifyRejectedCorruptRecord, Name: "gocred_verify_rejected_corrupt_record_total", Help: "Verify calls that found an undecodable record.", Op: "verify", Outcome: "corrupt_record"},
	{ID: goCred.MetricVerifyRejectedInactive, Name: "gocred_verify_rejected_inactive_total", Help: "Verify calls with a correct password for a deactivated record.", Op: "verify", Outcome: "inactive"},
	{ID: goCred.MetricVerifyUnavailable, Name: "gocred_verify_unavailable_total", Help: "Verify calls that failed because the store could not answer.", Op: "verify", Outcome: "unavailable"},
	{ID: goCred.MetricVerifyInvalidInput, Name: "gocred_verify_invalid_input_total", Help: "Verify calls refused before reaching the store.", Op: "verify", Outcome: "invalid_input"},
	{ID: goCred.MetricEnrollSuccess, Name: "gocred_enroll_success_total", Help: "Created credential records.", Op: "enroll", Outcome: "success"},
	{ID: goCred.MetricEnrollDuplicate, Name: "gocred_enroll_duplicate_total", Help: "Enroll attempts for an email that already has a record.", Op: "enroll", Outcome: "duplicate"},
	{ID: goCred.MetricPasswordChangeSuccess, Name: "gocred_password_change_success_total", Help: "Successful password changes.", Op: "password_change", Outcome: "success"},
	{ID: goCred.MetricPasswordChangeInvalidOld, Name: "gocred_password_change_invalid_old_total", Help: "Password change attempts with an invalid current password.", Op: "password_change", Outcome: "invalid_old"},
	{ID: goCred.MetricPasswordChangeConflict, Name: "gocred_password_change_conflict_total", Help: "Password changes lost to a concurrent write.", Op: "password_change", Outcome: "conflict"},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goCred.MetricVerifyLatency, Name: "gocred_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds are the upper bounds in Prometheus "le" label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bounds of HistogramBounds in seconds.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed 8-slot array, padding with zeros
// and dropping extra entries.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals. The last
// slot is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
