package budget

// Tier is the severity of a budget's utilisation.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierDanger
)

// Utilisation thresholds, in whole percent.
const (
	WarningThreshold int64 = 75
	DangerThreshold  int64 = 90
)

// Classify maps a utilisation percentage to its tier. Values of 90 and above
// are danger, 75 and above warning, everything else (including negatives) normal.
func Classify(percentage int64) Tier {
	switch {
	case percentage >= DangerThreshold:
		return TierDanger
	case percentage >= WarningThreshold:
		return TierWarning
	default:
		return TierNormal
	}
}

func (t Tier) String() string {
	switch t {
	case TierDanger:
		return "danger"
	case TierWarning:
		return "warning"
	default:
		return "normal"
	}
}

// Alert reports whether the tier should raise an alert to the user.
func (t Tier) Alert() bool {
	return t == TierDanger
}
