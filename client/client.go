package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/questionnaire"
	"github.com/meinhoongagan/health-companion/services"
	"github.com/meinhoongagan/health-companion/utils"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int                `json:"-"`
	Message string             `json:"error"`
	Fields  []utils.FieldError `json:"errors,omitempty"`
	// Set on a login attempt for an unverified account.
	RequiresVerification bool `json:"requiresVerification,omitempty"`
	UserID               uint `json:"userId,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" && len(e.Fields) > 0 {
		return fmt.Sprintf("status %d: %s", e.Status, utils.ValidationErrors(e.Fields).Error())
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Client talks to the REST API. It holds no credentials; every
// authenticated call takes the token explicitly.
type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

type SessionResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
	Phone   string `json:"phone"`
}

type StartQuizResponse struct {
	Message      string                  `json:"message"`
	QuizID       uint                    `json:"quizId"`
	SessionID    string                  `json:"sessionId"`
	NextQuestion *questionnaire.Question `json:"nextQuestion"`
}

type AnswerResponse struct {
	Message      string                  `json:"message"`
	Quiz         models.QuizSession      `json:"quiz"`
	NextQuestion *questionnaire.Question `json:"nextQuestion,omitempty"`
	Progress     *services.Progress      `json:"progress,omitempty"`
	Analysis     *models.Analysis        `json:"analysis,omitempty"`
	Summary      *models.QuizSummary     `json:"summary,omitempty"`
}

type SubmitContactResponse struct {
	Message   string `json:"message"`
	ContactID uint   `json:"contactId"`
	Priority  string `json:"priority"`
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	r := c.http.R().SetContext(ctx).SetError(&APIError{})
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

func do[T any](r *resty.Request, method, path string, body any) (*T, error) {
	var out T
	if body != nil {
		r.SetBody(body)
	}
	resp, err := r.SetResult(&out).Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok {
			apiErr = &APIError{}
			_ = json.Unmarshal(resp.Body(), apiErr)
		}
		apiErr.Status = resp.StatusCode()
		return nil, apiErr
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in services.RegisterInput) (*RegisterResponse, error) {
	return do[RegisterResponse](c.request(ctx, ""), resty.MethodPost, "/api/auth/register", in)
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*SessionResponse, error) {
	return do[SessionResponse](c.request(ctx, ""), resty.MethodPost, "/api/auth/verify-otp",
		services.VerifyOTPInput{Phone: phone, OTP: otp})
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*SessionResponse, error) {
	return do[SessionResponse](c.request(ctx, ""), resty.MethodPost, "/api/auth/login",
		services.LoginInput{Identifier: identifier, Password: password})
}

func (c *Client) Me(ctx context.Context, token string) (*models.PublicUser, error) {
	out, err := do[struct {
		User models.PublicUser `json:"user"`
	}](c.request(ctx, token), resty.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := do[struct{}](c.request(ctx, token), resty.MethodPost, "/api/auth/logout", nil)
	return err
}

func (c *Client) StartQuiz(ctx context.Context, token string, in services.StartQuizInput) (*StartQuizResponse, error) {
	return do[StartQuizResponse](c.request(ctx, token), resty.MethodPost, "/api/quiz/start", in)
}

func (c *Client) Answer(ctx context.Context, token string, in services.AnswerInput) (*AnswerResponse, error) {
	return do[AnswerResponse](c.request(ctx, token), resty.MethodPost, "/api/quiz/answer", in)
}

func (c *Client) SubmitContact(ctx context.Context, in services.SubmitContactInput) (*SubmitContactResponse, error) {
	return do[SubmitContactResponse](c.request(ctx, ""), resty.MethodPost, "/api/contact/submit", in)
}
