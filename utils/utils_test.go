package utils

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 150)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        Pagination
	}{
		{1, 10, 0, Pagination{Current: 1, Total: 0}},
		{1, 10, 10, Pagination{Current: 1, Total: 1}},
		{1, 10, 11, Pagination{Current: 1, Total: 2, HasNext: true}},
		{2, 10, 11, Pagination{Current: 2, Total: 2, HasPrev: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit, tt.total))
	}
}

func TestParsePage(t *testing.T) {
	p, l := ParsePage("", "", 10, 100)
	assert.Equal(t, 1, p)
	assert.Equal(t, 10, l)

	p, l = ParsePage("3", "500", 10, 100)
	assert.Equal(t, 3, p)
	assert.Equal(t, 100, l)
	assert.Equal(t, 200, Offset(p, l))

	p, l = ParsePage("-1", "x", 20, 100)
	assert.Equal(t, 1, p)
	assert.Equal(t, 20, l)
}

type signup struct {
	Name  string `json:"name" validate:"min=2,max=50"`
	Phone string `json:"phone" validate:"phone"`
	Prefs struct {
		Theme string `json:"theme" validate:"omitempty,oneof=light dark auto"`
	} `json:"prefs"`
}

func (signup) FieldMessages() map[string]string {
	return map[string]string{
		"name":        "Name must be 2-50 characters",
		"phone":       "Invalid phone number",
		"prefs.theme": "Invalid theme",
	}
}

func TestValidate(t *testing.T) {
	ok := signup{Name: "Ann", Phone: "+1 (555) 000-1234"}
	require.NoError(t, Validate(ok))

	bad := signup{Name: "A", Phone: "call me"}
	bad.Prefs.Theme = "neon"
	err := Validate(bad)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)
	assert.Equal(t, FieldError{Field: "name", Message: "Name must be 2-50 characters", Value: "A"}, verrs[0])
	assert.Equal(t, "phone", verrs[1].Field)
	assert.Equal(t, "Invalid theme", verrs[2].Message)
	assert.True(t, strings.Contains(err.Error(), "Invalid phone number"))
}

type note struct {
	Title  string `json:"title" validate:"min=3"`
	Pinned bool   `json:"pinned"`
}

func (n *note) Normalize() { n.Title = strings.TrimSpace(n.Title) }

func (note) FieldMessages() map[string]string {
	return map[string]string{"title": "Title too short", "pinned": "Pinned must be boolean"}
}

func TestValidate_NormalizesBeforeChecking(t *testing.T) {
	n := &note{Title: "  ab   "}
	err := Validate(n)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "ab", verrs[0].Value)

	n = &note{Title: "  abc  "}
	require.NoError(t, Validate(n))
	assert.Equal(t, "abc", n.Title)
}

func TestTypeErrors(t *testing.T) {
	var n note
	err := json.Unmarshal([]byte(`{"title":"abc","pinned":"yes"}`), &n)
	require.Error(t, err)
	fields, ok := TypeErrors(&n, err)
	require.True(t, ok)
	assert.Equal(t, ValidationErrors{{Field: "pinned", Message: "Pinned must be boolean"}}, fields)

	err = json.Unmarshal([]byte(`{`), &n)
	_, ok = TypeErrors(&n, err)
	assert.False(t, ok)
}

func TestPhonePattern(t *testing.T) {
	for _, p := range []string{"+15550001", "555 000 1234", "(555)000-1234"} {
		assert.True(t, phonePattern.MatchString(p), p)
	}
	for _, p := range []string{"", "++1", "555-CALL", "+"} {
		assert.False(t, phonePattern.MatchString(p), p)
	}
}

func TestDisabledUploader(t *testing.T) {
	_, err := DisabledUploader{}.UploadAvatar(context.Background(), strings.NewReader("x"), "id")
	assert.ErrorIs(t, err, ErrUploadDisabled)
}
