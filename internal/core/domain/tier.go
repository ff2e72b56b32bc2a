package domain

type Tier string

const (
	TierCounsellor      Tier = "counsellor"
	TierPsychotherapist Tier = "psychotherapist"
	TierPsychologist    Tier = "psychologist"
	TierSpecialist      Tier = "specialist"
)

// tierFees maps a professional tier to its per-session fee in pence.
// The table is fixed; fee changes ship as a code change.
var tierFees = map[Tier]int{
	TierCounsellor:      4500,
	TierPsychotherapist: 6500,
	TierPsychologist:    9000,
	TierSpecialist:      12000,
}

// FeeForTier returns the session fee for a tier, and whether the tier is known.
func FeeForTier(t Tier) (int, bool) {
	fee, ok := tierFees[t]
	return fee, ok
}

// ValidTier reports whether t is one of the recognised professional tiers.
func ValidTier(t Tier) bool {
	_, ok := tierFees[t]
	return ok
}
