package goCred

import (
	"fmt"
	"time"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	// LintInfo marks settings that are valid but worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks settings that weaken security or availability.
	LintWarn
	// LintHigh marks settings that should not reach production.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "info"
	case LintWarn:
		return "warn"
	case LintHigh:
		return "high"
	default:
		return "unknown"
	}
}

// LintWarning is a single finding from [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports valid-but-risky settings. It never fails; call Validate for
// hard errors. Lint on an invalid config may report nothing useful.
func (c *Config) Lint() LintResult {
	var out LintResult

	if !c.KDF.PerRecordSalt {
		out = append(out, LintWarning{
			Code:     "global_salt",
			Severity: LintWarn,
			Message:  "new records share the process-wide salt; enable KDF PerRecordSalt",
		})
	}
	if salt, err := c.KDF.decodeSalt(); err == nil && len(salt) < 16 {
		out = append(out, LintWarning{
			Code:     "salt_short",
			Severity: LintWarn,
			Message:  fmt.Sprintf("process-wide salt is %d bytes; 16 or more is recommended", len(salt)),
		})
	}
	if c.KDF.N < 16384 {
		out = append(out, LintWarning{
			Code:     "kdf_cost_low",
			Severity: LintHigh,
			Message:  fmt.Sprintf("scrypt N=%d is below 16384", c.KDF.N),
		})
	}
	if c.KDF.MaxPasswordBytes > 4096 {
		out = append(out, LintWarning{
			Code:     "max_password_large",
			Severity: LintInfo,
			Message:  "MaxPasswordBytes above 4096 lets callers submit very large KDF inputs",
		})
	}
	if c.Store.RequestTimeout > 10*time.Second {
		out = append(out, LintWarning{
			Code:     "request_timeout_long",
			Severity: LintWarn,
			Message:  "store RequestTimeout above 10s lets a degraded store pile up requests",
		})
	}

	return out
}
