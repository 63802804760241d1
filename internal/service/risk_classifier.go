package service

import (
	"strings"

	"github.com/lshigami/wellrelay/internal/model"
)

const (
	RiskLow              = "Low"
	RiskMild             = "Mild"
	RiskModerate         = "Moderate"
	RiskModeratelySevere = "Moderately Severe"
	RiskSevere           = "Severe"
	RiskHigh             = "High"
)

type riskBand struct {
	min   int
	level string
}

// Bands are ordered highest first; the first band whose minimum is reached wins.
var riskBands = map[string][]riskBand{
	model.CodePHQ9: {
		{20, RiskSevere},
		{15, RiskModeratelySevere},
		{10, RiskModerate},
		{5, RiskMild},
	},
	model.CodeGAD7: {
		{15, RiskSevere},
		{10, RiskModerate},
		{5, RiskMild},
	},
	// Any positive C-SSRS answer is high risk.
	model.CodeCSSRS: {
		{1, RiskHigh},
	},
}

type RiskClassifier interface {
	Classify(code string, totalScore int) string
}

type riskClassifier struct{}

func NewRiskClassifier() RiskClassifier {
	return riskClassifier{}
}

func (riskClassifier) Classify(code string, totalScore int) string {
	return ClassifyRisk(code, totalScore)
}

// ClassifyRisk maps an instrument score to its risk level. Unknown codes are Low.
func ClassifyRisk(code string, totalScore int) string {
	for _, band := range riskBands[NormalizeCode(code)] {
		if totalScore >= band.min {
			return band.level
		}
	}
	return RiskLow
}

// NormalizeCode trims and upper-cases an assessment code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
