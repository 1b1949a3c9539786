package scraper

// State names one step of the dependent-field acquisition workflow. The
// derivative sub-chain (ExpirySelected through SideSelected) is skipped for
// equity runs.
type State string

const (
	StateIdle               State = "Idle"
	StateSessionOpen        State = "SessionOpen"
	StateInstrumentSearched State = "InstrumentSearched"
	StateKindSelected       State = "KindSelected"
	StateExpirySelected     State = "ExpirySelected"
	StateStrikeWaiting      State = "StrikeWaiting"
	StateStrikeSelected     State = "StrikeSelected"
	StateSideSelected       State = "SideSelected"
	StateSubmitted          State = "Submitted"
	StateExtracted          State = "Extracted"
	StateDone               State = "Done"
	StateFailed             State = "Failed"
)
