package forecast

import (
	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// SelectProfile maps a complexity tier and the prepared data length to a
// training profile. The mapping is pure: identical inputs always yield an
// identical profile.
//
// Candidate sets scale with the requested tier; generations and validation
// folds scale with data volume so short series never pay for effort they
// cannot support.
func SelectProfile(tier models.ComplexityTier, dataLength int) models.TrainingProfile {
	profile := models.TrainingProfile{CandidateSet: candidateSetFor(tier)}

	switch {
	case dataLength <= 12:
		profile.Generations = 1
		profile.ValidationFolds = 1
	case dataLength <= 24:
		profile.Generations = 2
		profile.ValidationFolds = 2
	default:
		profile.Generations = 3
		profile.ValidationFolds = 3
	}
	return profile
}

func candidateSetFor(tier models.ComplexityTier) models.CandidateSet {
	switch tier {
	case models.TierSimple:
		return models.CandidateSetSuperfast
	case models.TierMedium:
		return models.CandidateSetFast
	case models.TierComplex:
		return models.CandidateSetDefault
	default: // TierAll and anything unrecognized
		return models.CandidateSetAll
	}
}
