package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuizStatus string

const (
	QuizStatusInProgress       QuizStatus = "in_progress"
	QuizStatusCompleted        QuizStatus = "completed"
	QuizStatusReviewedByDoctor QuizStatus = "reviewed_by_doctor"
)

// QuestionQuota is the number of answers that completes a session.
const QuestionQuota = 5

var ErrQuizClosed = errors.New("quiz is not in progress")

var (
	PrimarySymptoms = []string{
		"fever", "cough", "headache", "fatigue", "nausea", "dizziness",
		"chest_pain", "abdominal_pain", "joint_pain", "skin_rash",
		"shortness_of_breath", "loss_of_appetite", "insomnia", "anxiety",
	}
	Severities         = []string{"mild", "moderate", "severe"}
	Durations          = []string{"less_than_24h", "1_3_days", "3_7_days", "more_than_week"}
	QuestionCategories = []string{"general", "respiratory", "cardiovascular", "gastrointestinal", "neurological", "dermatological"}
)

type Symptoms struct {
	Primary  string `json:"primary" gorm:"index"`
	Severity string `json:"severity"`
	Duration string `json:"duration"`
}

type QuizResponse struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     any    `json:"answer"`
	Category   string `json:"category"`
}

type RiskFactor struct {
	Factor  string `json:"factor"`
	Present bool   `json:"present"`
	Details string `json:"details,omitempty"`
}

type PossibleCondition struct {
	Condition   string `json:"condition"`
	Probability int    `json:"probability"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type Recommendation struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type Analysis struct {
	PossibleConditions []PossibleCondition `json:"possibleConditions"`
	Recommendations    []Recommendation    `json:"recommendations"`
	Confidence         int                 `json:"confidence"`
	Disclaimer         string              `json:"disclaimer"`
}

type QuizMetadata struct {
	DeviceInfo string `json:"deviceInfo,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	IPAddress  string `json:"ipAddress,omitempty"`
}

type QuizSession struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SessionID   string         `json:"sessionId" gorm:"uniqueIndex;not null"`
	UserID      uint           `json:"user" gorm:"index;not null"`
	Symptoms    Symptoms       `json:"symptoms" gorm:"embedded;embeddedPrefix:symptom_"`
	Responses   []QuizResponse `json:"responses" gorm:"type:jsonb;serializer:json"`
	RiskFactors []RiskFactor   `json:"riskFactors" gorm:"type:jsonb;serializer:json"`
	AIAnalysis  *Analysis      `json:"aiAnalysis,omitempty" gorm:"type:jsonb;serializer:json"`
	Status      QuizStatus     `json:"status" gorm:"size:32;index;not null"`
	// Version guards the append-and-maybe-complete update.
	Version   int          `json:"-" gorm:"not null;default:0"`
	Metadata  QuizMetadata `json:"metadata" gorm:"embedded;embeddedPrefix:meta_"`
	CreatedAt time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func NewSessionID() string {
	return "quiz_" + uuid.NewString()
}

// NewQuizSession starts a session in the in_progress state.
func NewQuizSession(userID uint, symptoms Symptoms, meta QuizMetadata) *QuizSession {
	return &QuizSession{
		SessionID:   NewSessionID(),
		UserID:      userID,
		Symptoms:    symptoms,
		Responses:   []QuizResponse{},
		RiskFactors: []RiskFactor{},
		Status:      QuizStatusInProgress,
		Metadata:    meta,
	}
}

// UpdateStatus only allows forward transitions.
func (q *QuizSession) UpdateStatus(newStatus QuizStatus) error {
	switch q.Status {
	case QuizStatusInProgress:
		if newStatus != QuizStatusCompleted {
			return fmt.Errorf("invalid transition from in_progress to %s", newStatus)
		}
	case QuizStatusCompleted:
		if newStatus != QuizStatusReviewedByDoctor {
			return fmt.Errorf("invalid transition from completed to %s", newStatus)
		}
	default:
		return fmt.Errorf("no transitions allowed from %s", q.Status)
	}
	q.Status = newStatus
	return nil
}

// RecordAnswer appends an answer and completes the session when the quota is
// reached, calling analyze exactly once for that transition.
func (q *QuizSession) RecordAnswer(resp QuizResponse, analyze func(Symptoms) Analysis) (bool, error) {
	if q.Status != QuizStatusInProgress {
		return false, ErrQuizClosed
	}
	if resp.Question == "" {
		resp.Question = "Question " + resp.QuestionID
	}
	if resp.Category == "" {
		resp.Category = "general"
	}
	q.Responses = append(q.Responses, resp)
	q.Version++

	if len(q.Responses) < QuestionQuota {
		return false, nil
	}
	if err := q.UpdateStatus(QuizStatusCompleted); err != nil {
		return false, err
	}
	a := analyze(q.Symptoms)
	q.AIAnalysis = &a
	return true, nil
}

var (
	highRiskSymptoms     = []string{"chest_pain", "shortness_of_breath", "severe_headache"}
	moderateRiskSymptoms = []string{"fever", "abdominal_pain", "dizziness"}
)

func (q *QuizSession) RiskLevel() string {
	switch {
	case contains(highRiskSymptoms, q.Symptoms.Primary) && q.Symptoms.Severity == "severe":
		return "high"
	case contains(moderateRiskSymptoms, q.Symptoms.Primary) || q.Symptoms.Severity == "moderate":
		return "moderate"
	}
	return "low"
}

type QuizSummary struct {
	PrimarySymptom     string              `json:"primarySymptom"`
	Severity           string              `json:"severity"`
	Duration           string              `json:"duration"`
	RiskLevel          string              `json:"riskLevel"`
	PossibleConditions []PossibleCondition `json:"possibleConditions"`
	TopRecommendation  *Recommendation     `json:"topRecommendation"`
}

func (q *QuizSession) Summary() QuizSummary {
	s := QuizSummary{
		PrimarySymptom:     q.Symptoms.Primary,
		Severity:           q.Symptoms.Severity,
		Duration:           q.Symptoms.Duration,
		RiskLevel:          q.RiskLevel(),
		PossibleConditions: []PossibleCondition{},
	}
	if q.AIAnalysis == nil {
		return s
	}
	conds := q.AIAnalysis.PossibleConditions
	if len(conds) > 3 {
		conds = conds[:3]
	}
	s.PossibleConditions = conds
	if len(q.AIAnalysis.Recommendations) > 0 {
		top := q.AIAnalysis.Recommendations[0]
		s.TopRecommendation = &top
	}
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
