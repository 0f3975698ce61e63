package sms

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGatewaySender_SendCode(t *testing.T) {
	var got http.Header
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got = r.Header.Clone()
		form = map[string]string{"To": r.PostForm.Get("To"), "From": r.PostForm.Get("From"), "Body": r.PostForm.Get("Body")}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	s := NewGatewaySender(srv.URL, "AC1", "tok", "+15550000", zap.NewNop())
	require.NoError(t, s.SendCode(context.Background(), "+15551111", "123456"))

	user, pass, ok := (&http.Request{Header: got}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "AC1", user)
	assert.Equal(t, "tok", pass)
	assert.Equal(t, "+15551111", form["To"])
	assert.Equal(t, "+15550000", form["From"])
	assert.Contains(t, form["Body"], "123456")
}

func TestGatewaySender_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	s := NewGatewaySender(srv.URL, "AC1", "tok", "+15550000", zap.NewNop())
	err := s.SendCode(context.Background(), "bogus", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}

func TestGatewaySender_LostResponseIsNotResent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	s := NewGatewaySender(srv.URL, "AC1", "tok", "+15550000", zap.NewNop())
	require.Error(t, s.SendCode(context.Background(), "+15551111", "123456"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetryOnDialError(t *testing.T) {
	assert.True(t, retryOnDialError(nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}))
	assert.False(t, retryOnDialError(nil, &net.OpError{Op: "read", Err: errors.New("reset")}))
	assert.False(t, retryOnDialError(nil, nil))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(zap.NewNop()).SendCode(context.Background(), "+1", "000000"))
}
