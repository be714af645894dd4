package goCred

// RejectReason says why Verify rejected a credential pair.
//
// The reason is for metrics and server-side logs. Callers facing end users
// should collapse every reason into one response so the reason cannot be
// used to enumerate accounts.
type RejectReason uint8

const (
	// ReasonNone is the zero value carried by accepted results.
	ReasonNone RejectReason = iota
	// ReasonNoSuchUser means no record exists for the email.
	ReasonNoSuchUser
	// ReasonWrongPassword means the derived hash did not match.
	ReasonWrongPassword
	// ReasonCorruptRecord means the stored record could not be decoded.
	ReasonCorruptRecord
	// ReasonInactive means the password matched a deactivated record.
	ReasonInactive
)

// String returns the snake_case reason name.
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoSuchUser:
		return "no_such_user"
	case ReasonWrongPassword:
		return "wrong_password"
	case ReasonCorruptRecord:
		return "corrupt_record"
	case ReasonInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// VerificationResult is the verdict of [Engine.Verify]. Reason is
// [ReasonNone] exactly when Accepted is true.
type VerificationResult struct {
	Accepted bool
	Reason   RejectReason
}

func accepted() VerificationResult {
	return VerificationResult{Accepted: true}
}

func rejected(reason RejectReason) VerificationResult {
	return VerificationResult{Reason: reason}
}

// Account is the non-secret view of a credential record returned by
// [Engine.Enroll].
type Account struct {
	Email   string
	UID     string
	Version int
}
