package questionnaire

import "github.com/meinhoongagan/health-companion/models"

const Disclaimer = "This analysis is for informational purposes only and should not replace professional medical advice."

// Rule pairs a predicate over the initial symptoms with a fixed outcome.
type Rule struct {
	Name           string
	Match          func(models.Symptoms) bool
	Condition      models.PossibleCondition
	Recommendation models.Recommendation
	Confidence     int
}

// Rules are evaluated in order; the first match wins. The last rule always matches.
var Rules = []Rule{
	{
		Name: "fever-severe",
		Match: func(s models.Symptoms) bool {
			return s.Primary == "fever" && s.Severity == "severe"
		},
		Condition: models.PossibleCondition{
			Condition:   "High Fever",
			Probability: 85,
			Description: "Severe fever requiring immediate attention",
			Severity:    "high",
		},
		Recommendation: models.Recommendation{
			Type:        "immediate",
			Action:      "Seek immediate medical attention",
			Description: "High fever can be dangerous and requires prompt medical evaluation",
			Priority:    1,
		},
		Confidence: 80,
	},
	{
		Name: "cough-persistent",
		Match: func(s models.Symptoms) bool {
			return s.Primary == "cough" && s.Duration == "more_than_week"
		},
		Condition: models.PossibleCondition{
			Condition:   "Persistent Cough",
			Probability: 70,
			Description: "Cough lasting more than a week may indicate underlying condition",
			Severity:    "moderate",
		},
		Recommendation: models.Recommendation{
			Type:        "urgent",
			Action:      "Consult a doctor within 24-48 hours",
			Description: "Persistent cough should be evaluated by a healthcare professional",
			Priority:    2,
		},
		Confidence: 75,
	},
	{
		Name: "headache-mild",
		Match: func(s models.Symptoms) bool {
			return s.Primary == "headache" && s.Severity == "mild"
		},
		Condition: models.PossibleCondition{
			Condition:   "Tension Headache",
			Probability: 60,
			Description: "Common stress-related headache",
			Severity:    "low",
		},
		Recommendation: models.Recommendation{
			Type:        "routine",
			Action:      "Monitor symptoms and try stress reduction",
			Description: "Consider over-the-counter pain relief and stress management",
			Priority:    3,
		},
		Confidence: 65,
	},
	{
		Name:  "general",
		Match: func(models.Symptoms) bool { return true },
		Condition: models.PossibleCondition{
			Condition:   "General Symptoms",
			Probability: 50,
			Description: "Symptoms require further evaluation",
			Severity:    "moderate",
		},
		Recommendation: models.Recommendation{
			Type:        "routine",
			Action:      "Monitor symptoms and consult doctor if they worsen",
			Description: "Keep track of symptoms and seek medical advice if needed",
			Priority:    4,
		},
		Confidence: 50,
	},
}

// Analyze maps the initial symptom triad to a canned analysis.
// Recorded answers are not inspected.
func Analyze(s models.Symptoms) models.Analysis {
	for _, r := range Rules {
		if r.Match(s) {
			return r.outcome()
		}
	}
	// unreachable while the last rule is a catch-all
	return Rules[len(Rules)-1].outcome()
}

func (r Rule) outcome() models.Analysis {
	return models.Analysis{
		PossibleConditions: []models.PossibleCondition{r.Condition},
		Recommendations:    []models.Recommendation{r.Recommendation},
		Confidence:         r.Confidence,
		Disclaimer:         Disclaimer,
	}
}
