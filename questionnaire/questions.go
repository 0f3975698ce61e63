package questionnaire

type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

var symptomQuestions = map[string][]Question{
	"fever": {
		{
			ID:       "fever_temp",
			Question: "What is your body temperature?",
			Type:     "select",
			Options:  []string{"Below 100°F (37.8°C)", "100-102°F (37.8-39°C)", "Above 102°F (39°C)", "Don't know"},
			Category: "general",
		},
		{
			ID:       "fever_chills",
			Question: "Do you have chills or sweating?",
			Type:     "radio",
			Options:  []string{"Yes", "No"},
			Category: "general",
		},
	},
	"cough": {
		{
			ID:       "cough_type",
			Question: "What type of cough do you have?",
			Type:     "select",
			Options:  []string{"Dry cough", "Wet/productive cough", "Barking cough", "Whooping cough"},
			Category: "respiratory",
		},
		{
			ID:       "cough_triggers",
			Question: "What triggers your cough?",
			Type:     "checkbox",
			Options:  []string{"Cold air", "Exercise", "Lying down", "Eating", "Nothing specific"},
			Category: "respiratory",
		},
	},
	"headache": {
		{
			ID:       "headache_location",
			Question: "Where is your headache located?",
			Type:     "select",
			Options:  []string{"Front of head", "Back of head", "One side", "All over", "Behind eyes"},
			Category: "neurological",
		},
		{
			ID:       "headache_triggers",
			Question: "What triggers your headache?",
			Type:     "checkbox",
			Options:  []string{"Stress", "Lack of sleep", "Bright lights", "Loud noises", "Certain foods"},
			Category: "neurological",
		},
	},
}

var genericQuestions = []Question{
	{
		ID:       "general_health",
		Question: "How would you rate your overall health?",
		Type:     "select",
		Options:  []string{"Excellent", "Good", "Fair", "Poor"},
		Category: "general",
	},
	{
		ID:       "medications",
		Question: "Are you currently taking any medications?",
		Type:     "radio",
		Options:  []string{"Yes", "No"},
		Category: "general",
	},
}

// Questions returns the symptom-specific bank followed by the generic bank.
func Questions(primarySymptom string) []Question {
	specific := symptomQuestions[primarySymptom]
	all := make([]Question, 0, len(specific)+len(genericQuestions))
	all = append(all, specific...)
	return append(all, genericQuestions...)
}

// NextQuestion returns the n-th question (1-based), or nil past the end of
// the combined bank. The bank can be shorter than the answer quota.
func NextQuestion(primarySymptom string, n int) *Question {
	all := Questions(primarySymptom)
	if n < 1 || n > len(all) {
		return nil
	}
	q := all[n-1]
	return &q
}
