package classifier

// Reference word sets anchoring each polarity. Read-only after construction;
// words absent from the model vocabulary are simply skipped during scoring.
var (
	defaultPosRef = []string{
		"love", "best", "beautiful", "great", "cool",
		"awesome", "wonderful", "brilliant", "excellent", "fantastic",
	}
	defaultNegRef = []string{
		"bad", "worst", "stupid", "disappointing", "terrible",
		"rubbish", "boring", "awful", "unwatchable", "awkward",
	}
)

// PositiveRef returns a copy of the default positive reference word set.
func PositiveRef() []string {
	return append([]string(nil), defaultPosRef...)
}

// NegativeRef returns a copy of the default negative reference word set.
func NegativeRef() []string {
	return append([]string(nil), defaultNegRef...)
}
