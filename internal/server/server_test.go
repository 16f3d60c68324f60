package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/handler"
	"github.com/pricofy/word-translator/internal/metrics"
	"github.com/pricofy/word-translator/internal/registration"
	"github.com/pricofy/word-translator/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingJournal struct{}

func (failingJournal) Append(context.Context, domain.NewTransReq) error {
	return errors.New("disk full")
}

func newTestServer(t *testing.T, opts ...registration.Option) *Server {
	t.Helper()
	store, err := dictionary.New(
		domain.Language{
			ID: "en", Label: "english", UnitSplitSymbols: " ,", AllowedSymbols: "abcdefghijklmnopqrstuvwxyz",
			Words: []domain.TransWord{domain.NewTransWord("hello", "elb", "xy")},
		},
		domain.Language{ID: "elb", Label: "elbish", UnitSplitSymbols: " ", AllowedSymbols: "xyz"},
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	h := handler.New(resolver.New(store), registration.New(store, opts...), store, logger, m)
	return New(h, m.Handler(), logger)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestTranslateEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"translated", `{"content":"hello, hello","from":"en","to":"elb"}`, http.StatusOK, `{"content":"xy, xy","able_to_translate":true}`},
		{"untranslatable", `{"content":"goodbye","from":"en","to":"elb"}`, http.StatusOK, `{"content":"goodbye","able_to_translate":false}`},
		{"unknown language", `{"content":"hi","from":"en","to":"zz"}`, http.StatusNotFound, `{"content":"resolve to: dictionary: language \"zz\": unknown language"}`},
		{"missing from", `{"content":"hi","to":"elb"}`, http.StatusBadRequest, `{"content":"from is required"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/translate", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestTranslateEndpoint_DecodeError(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/translate", `{"content":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid translate request")
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"registered", `{"from_lang":"en","to_lang":"elb","word":"cat","meanings":["zz"]}`, http.StatusCreated},
		{"duplicate meaning", `{"from_lang":"en","to_lang":"elb","word":"cat","meanings":["zz"]}`, http.StatusConflict},
		{"unknown language", `{"from_lang":"en","to_lang":"zz","word":"cat","meanings":["zz"]}`, http.StatusNotFound},
		{"invalid symbol", `{"from_lang":"en","to_lang":"elb","word":"Cat","meanings":["zz"]}`, http.StatusUnprocessableEntity},
		{"no meanings", `{"from_lang":"en","to_lang":"elb","word":"dog","meanings":[]}`, http.StatusUnprocessableEntity},
		{"missing meanings", `{"from_lang":"en","to_lang":"elb","word":"dog"}`, http.StatusBadRequest},
		{"malformed", `[`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/words", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, s, http.MethodPost, "/translate", `{"content":"cat","from":"en","to":"elb"}`)
	assert.JSONEq(t, `{"content":"zz","able_to_translate":true}`, rec.Body.String())
}

func TestRegisterEndpoint_NotPersisted(t *testing.T) {
	s := newTestServer(t, registration.WithJournal(failingJournal{}))

	rec := do(t, s, http.MethodPost, "/words", `{"from_lang":"en","to_lang":"elb","word":"cat","meanings":["zz"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "entry registered but not persisted")
}

func TestLanguagesEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/languages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"elb","label":"elbish","words":0},{"id":"en","label":"english","words":1}]`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/languages/en", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol_chain":"hello"`)

	rec = do(t, s, http.MethodGet, "/languages/zz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiscEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/examples", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "content to translate")

	do(t, s, http.MethodPost, "/translate", `{"content":"hello","from":"en","to":"elb"}`)
	rec = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "translator_translate_requests_total")
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
