package enums

import "fmt"

// SplitPolicy maps to the split_policy_enum enum in Postgres.
type SplitPolicy string

const (
	SplitPolicyEqual      SplitPolicy = "equal"
	SplitPolicyCustom     SplitPolicy = "custom"
	SplitPolicyPercentage SplitPolicy = "percentage"
)

var validSplitPolicies = []SplitPolicy{
	SplitPolicyEqual,
	SplitPolicyCustom,
	SplitPolicyPercentage,
}

// IsValid reports whether the value matches the canonical split policy enum.
func (p SplitPolicy) IsValid() bool {
	for _, candidate := range validSplitPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSplitPolicy converts raw input into SplitPolicy.
func ParseSplitPolicy(value string) (SplitPolicy, error) {
	for _, candidate := range validSplitPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid split policy %q", value)
}
