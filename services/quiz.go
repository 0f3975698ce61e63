package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/questionnaire"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

const maxAnswerAttempts = 5

type StartQuizInput struct {
	PrimarySymptom string `json:"primarySymptom" validate:"oneof=fever cough headache fatigue nausea dizziness chest_pain abdominal_pain joint_pain skin_rash shortness_of_breath loss_of_appetite insomnia anxiety"`
	Severity       string `json:"severity" validate:"oneof=mild moderate severe"`
	Duration       string `json:"duration" validate:"oneof=less_than_24h 1_3_days 3_7_days more_than_week"`
}

func (StartQuizInput) FieldMessages() map[string]string {
	return map[string]string{
		"primarySymptom": "Invalid primary symptom",
		"severity":       "Invalid severity level",
		"duration":       "Invalid duration",
	}
}

type AnswerInput struct {
	QuizID     uint   `json:"quizId" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
	Answer     any    `json:"answer" validate:"answer"`
	Question   string `json:"question" validate:"omitempty,max=500"`
	Category   string `json:"category" validate:"omitempty,oneof=general respiratory cardiovascular gastrointestinal neurological dermatological"`
}

func (AnswerInput) FieldMessages() map[string]string {
	return map[string]string{
		"quizId":     "Invalid quiz ID",
		"questionId": "Question ID is required",
		"answer":     "Answer is required",
		"question":   "Question must be at most 500 characters",
		"category":   "Invalid category",
	}
}

func (in *AnswerInput) Normalize() {
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.Question = strings.TrimSpace(in.Question)
}

type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type AnswerResult struct {
	Quiz         *models.QuizSession
	Completed    bool
	NextQuestion *questionnaire.Question
	Progress     Progress
}

type QuizService struct {
	quizzes store.QuizStore
	analyze func(models.Symptoms) models.Analysis
	logger  *zap.Logger
}

func NewQuizService(quizzes store.QuizStore, logger *zap.Logger) *QuizService {
	return &QuizService{
		quizzes: quizzes,
		analyze: questionnaire.Analyze,
		logger:  logger,
	}
}

// Start opens an in_progress session and returns it with its first question.
func (s *QuizService) Start(ctx context.Context, userID uint, in StartQuizInput, meta models.QuizMetadata) (*models.QuizSession, *questionnaire.Question, error) {
	q := models.NewQuizSession(userID, models.Symptoms{
		Primary:  in.PrimarySymptom,
		Severity: in.Severity,
		Duration: in.Duration,
	}, meta)
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, nil, err
	}
	return q, questionnaire.NextQuestion(in.PrimarySymptom, 1), nil
}

// Answer appends one response. The write is conditional on the version that
// was read, so two racing answers cannot both land on the same state; the
// loser re-reads and tries again. The session that reaches the quota
// completes and gets its analysis in the same write.
func (s *QuizService) Answer(ctx context.Context, userID uint, in AnswerInput) (*AnswerResult, error) {
	resp := models.QuizResponse{
		QuestionID: in.QuestionID,
		Question:   in.Question,
		Answer:     in.Answer,
		Category:   in.Category,
	}

	for attempt := 1; attempt <= maxAnswerAttempts; attempt++ {
		q, err := s.quizzes.GetInProgress(ctx, in.QuizID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrQuizNotFound
			}
			return nil, err
		}

		expected := q.Version
		completed, err := q.RecordAnswer(resp, s.analyze)
		if err != nil {
			return nil, err
		}

		err = s.quizzes.UpdateIfVersion(ctx, q, expected)
		if errors.Is(err, store.ErrVersionConflict) {
			s.logger.Debug("quiz answer lost a race, retrying",
				zap.Uint("quiz_id", q.ID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		res := &AnswerResult{Quiz: q, Completed: completed}
		if !completed {
			n := len(q.Responses)
			res.NextQuestion = questionnaire.NextQuestion(q.Symptoms.Primary, n+1)
			res.Progress = Progress{
				Current:    n,
				Total:      models.QuestionQuota,
				Percentage: int(math.Round(float64(n) / models.QuestionQuota * 100)),
			}
		}
		return res, nil
	}
	return nil, ErrQuizContention
}

func (s *QuizService) Get(ctx context.Context, userID, id uint) (*models.QuizSession, error) {
	q, err := s.quizzes.GetForUser(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrQuizNotFound
	}
	return q, err
}

func (s *QuizService) History(ctx context.Context, userID uint, status models.QuizStatus, page, limit int) ([]models.QuizSession, utils.Pagination, error) {
	items, total, err := s.quizzes.List(ctx, store.QuizFilter{
		UserID: userID,
		Status: status,
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	})
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return items, utils.NewPagination(page, limit, total), nil
}

func (s *QuizService) Delete(ctx context.Context, userID, id uint) error {
	err := s.quizzes.Delete(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrQuizNotFound
	}
	return err
}
