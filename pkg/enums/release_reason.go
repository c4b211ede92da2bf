package enums

import "fmt"

// ReleaseReason labels why reserved units went back to available stock.
type ReleaseReason string

const (
	ReleaseRemoved ReleaseReason = "removed"
	ReleaseUpdated ReleaseReason = "updated"
	ReleaseCleared ReleaseReason = "cleared"
	ReleaseExpired ReleaseReason = "expired"
)

var validReleaseReasons = []ReleaseReason{
	ReleaseRemoved,
	ReleaseUpdated,
	ReleaseCleared,
	ReleaseExpired,
}

func (r ReleaseReason) String() string {
	return string(r)
}

// IsValid reports whether the reason is known.
func (r ReleaseReason) IsValid() bool {
	for _, candidate := range validReleaseReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReleaseReason converts raw input into ReleaseReason.
func ParseReleaseReason(value string) (ReleaseReason, error) {
	for _, candidate := range validReleaseReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid release reason %q", value)
}
