package market

// MintState is a step of the mint workflow. Steps run in declaration order,
// and any failure moves the workflow to MintStateAborted.
type MintState uint8

const (
	MintStateUnknown MintState = iota
	MintStateValidating
	MintStatePaying
	MintStateIssuing
	MintStateRegistering
	MintStateVerifyingCollection
	MintStateRecordingAffiliate
	MintStateCommitting
	MintStateDone
	MintStateAborted
)

// IsTerminal reports whether the workflow can no longer change state
func (s MintState) IsTerminal() bool {
	return s == MintStateDone || s == MintStateAborted
}

// next returns the state following s on the success path
func (s MintState) next() MintState {
	if s.IsTerminal() || s == MintStateUnknown {
		return s
	}
	return s + 1
}

func (s MintState) String() string {
	switch s {
	case MintStateValidating:
		return "validating"
	case MintStatePaying:
		return "paying"
	case MintStateIssuing:
		return "issuing"
	case MintStateRegistering:
		return "registering"
	case MintStateVerifyingCollection:
		return "verifying_collection"
	case MintStateRecordingAffiliate:
		return "recording_affiliate"
	case MintStateCommitting:
		return "committing"
	case MintStateDone:
		return "done"
	case MintStateAborted:
		return "aborted"
	}
	return "unknown"
}
