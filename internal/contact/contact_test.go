package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = Form{Name: "Ada", Email: "ada@example.com", Message: "Hi"}

type recordingArchive struct {
	forms []Form
	sent  []bool
}

func (a *recordingArchive) RecordMessage(_ context.Context, f Form, sent bool) error {
	a.forms = append(a.forms, f)
	a.sent = append(a.sent, sent)
	return nil
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	archive := &recordingArchive{}
	s := NewSubmitter(RelayFunc(func(context.Context, Form) error { return nil }), archive, nil)

	out := s.Submit(context.Background(), ada)
	assert.True(t, out.Sent)
	assert.Equal(t, SuccessNotice, out.Notice)
	assert.Equal(t, Form{}, out.Form)
	assert.NoError(t, out.Err)
	assert.Equal(t, []bool{true}, archive.sent)
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	archive := &recordingArchive{}
	s := NewSubmitter(RelayFunc(func(context.Context, Form) error { return ErrRelay }), archive, nil)

	out := s.Submit(context.Background(), ada)
	assert.False(t, out.Sent)
	assert.Equal(t, FailureNotice, out.Notice)
	assert.Equal(t, "Ada", out.Form.Name)
	assert.Equal(t, "ada@example.com", out.Form.Email)
	assert.Equal(t, "Hi", out.Form.Message)
	assert.ErrorIs(t, out.Err, ErrRelay)
	assert.Equal(t, []Form{ada}, archive.forms)
	assert.Equal(t, []bool{false}, archive.sent)
}

func TestSubmitDoesNotRetry(t *testing.T) {
	calls := 0
	s := NewSubmitter(RelayFunc(func(context.Context, Form) error {
		calls++
		return errors.New("boom")
	}), nil, nil)

	s.Submit(context.Background(), ada)
	assert.Equal(t, 1, calls)
}

func TestSubmitAsyncYieldsOnce(t *testing.T) {
	s := NewSubmitter(RelayFunc(func(context.Context, Form) error { return nil }), nil, nil)

	ch := s.SubmitAsync(context.Background(), ada)
	out, ok := <-ch
	require.True(t, ok)
	assert.True(t, out.Sent)

	_, ok = <-ch
	assert.False(t, ok, "channel closed after the single outcome")
}

func TestEmailJSRelaySend(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	relay := NewEmailJSRelay(srv.URL, "service_hg1jqcy", "template_qbwqyr3", "pubkey")
	require.NoError(t, relay.Send(context.Background(), ada))

	assert.Equal(t, "service_hg1jqcy", got.ServiceID)
	assert.Equal(t, "template_qbwqyr3", got.TemplateID)
	assert.Equal(t, "pubkey", got.UserID)
	assert.Equal(t, map[string]string{"name": "Ada", "email": "ada@example.com", "message": "Hi"}, got.TemplateParams)
}

func TestEmailJSRelayRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The public key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewEmailJSRelay(srv.URL, "s", "t", "k").Send(context.Background(), ada)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRelay)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSMTPRelay(t *testing.T) {
	relay := NewSMTPRelay("smtp.example.com", "587", "me@example.com", "secret", "inbox@example.com")
	var gotAddr string
	var gotMsg []byte
	relay.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "me@example.com", from)
		assert.Equal(t, []string{"inbox@example.com"}, to)
		return nil
	}

	f := ada
	f.Name = "Ada\r\nBcc: evil@example.com"
	require.NoError(t, relay.Send(context.Background(), f))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Portfolio Contact: Ada  Bcc: evil@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Reply-To: ada@example.com\r\n")
}

func TestSMTPRelayMissingCredentials(t *testing.T) {
	err := NewSMTPRelay("smtp.example.com", "587", "", "", "inbox@example.com").Send(context.Background(), ada)
	assert.ErrorIs(t, err, ErrRelay)
}
