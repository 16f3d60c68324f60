// Package handler turns transport requests into engine calls.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/metrics"
	"github.com/pricofy/word-translator/internal/registration"
	"github.com/pricofy/word-translator/internal/resolver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Actions accepted by Dispatch.
const (
	ActionTranslate = "translate"
	ActionRegister  = "register"
	ActionLanguages = "languages"
)

// Event is the envelope Dispatch decodes.
type Event struct {
	Action  string              `json:"action"`
	Payload jsoniter.RawMessage `json:"payload"`
}

// RequestError reports a request missing a required field.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string {
	return e.Msg
}

// Translator resolves translate requests.
type Translator interface {
	Explain(req domain.TransReq) (resolver.Result, error)
}

// Registrar commits registrations.
type Registrar interface {
	Register(ctx context.Context, req domain.NewTransReq) error
}

// Dictionary exposes the dictionary's read-only views.
type Dictionary interface {
	Languages() []dictionary.Info
	Snapshot(langID string) (domain.Language, error)
	Stats() map[string]int
}

// LanguageView summarises a registered language.
type LanguageView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Words int    `json:"words"`
}

// Handler serves translate and register requests.
type Handler struct {
	translator Translator
	registrar  Registrar
	dict       Dictionary
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New creates a Handler. logger and m may be nil.
func New(t Translator, r Registrar, dict Dictionary, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{translator: t, registrar: r, dict: dict, logger: logger, metrics: m}
}

// Translate resolves req. The returned error is a *RequestError or wraps
// resolver.ErrUnknownLanguage; untranslatable content is not an error.
func (h *Handler) Translate(ctx context.Context, req domain.TransReq) (*domain.TransResponse, error) {
	start := time.Now()
	logger := h.logger.With("request_id", uuid.NewString(), "op", ActionTranslate, "from", req.From, "to", req.To)

	if err := validateTransReq(req); err != nil {
		h.metrics.RecordTranslate(metrics.OutcomeError, "invalid request", time.Since(start))
		logger.WarnContext(ctx, "Translate rejected", "error", err)
		return nil, err
	}

	res, err := h.translator.Explain(req)
	if err != nil {
		h.metrics.RecordTranslate(metrics.OutcomeError, reasonLabel(err), time.Since(start))
		logger.WarnContext(ctx, "Translate failed", "error", err)
		return nil, err
	}

	if !res.Response.AbleToTranslate {
		h.metrics.RecordTranslate(metrics.OutcomeUntranslated, reasonLabel(res.Reason), time.Since(start))
		logger.InfoContext(ctx, "Translate untranslatable",
			"units", res.Units,
			"reason", res.Reason.Error(),
			"offset", res.Offset,
			"duration", time.Since(start))
		logger.DebugContext(ctx, "Untranslatable unit", "unit", res.Unit)
		return &res.Response, nil
	}

	h.metrics.RecordTranslate(metrics.OutcomeTranslated, "", time.Since(start))
	logger.InfoContext(ctx, "Translated", "units", res.Units, "duration", time.Since(start))
	return &res.Response, nil
}

// Register commits req. The returned error is a *RequestError or a
// *registration.Error.
func (h *Handler) Register(ctx context.Context, req domain.NewTransReq) error {
	start := time.Now()
	logger := h.logger.With("request_id", uuid.NewString(), "op", ActionRegister,
		"from", req.FromLang, "to", req.ToLang, "word", req.Word)

	if err := validateNewTransReq(req); err != nil {
		h.metrics.RecordRegister(metrics.OutcomeRejected, "invalid request", time.Since(start))
		logger.WarnContext(ctx, "Register rejected", "error", err)
		return err
	}

	if err := h.registrar.Register(ctx, req); err != nil {
		outcome := metrics.OutcomeRejected
		if errors.Is(err, registration.ErrNotPersisted) {
			outcome = metrics.OutcomeError
			// The entry is live in memory, keep the gauge accurate.
			h.metrics.SetDictionaryWords(h.dict.Stats())
		}
		h.metrics.RecordRegister(outcome, reasonLabel(err), time.Since(start))
		logger.WarnContext(ctx, "Register failed", "error", err)
		return err
	}

	h.metrics.RecordRegister(metrics.OutcomeRegistered, "", time.Since(start))
	h.metrics.SetDictionaryWords(h.dict.Stats())
	logger.InfoContext(ctx, "Registered", "meanings", len(req.Meanings), "duration", time.Since(start))
	return nil
}

// Languages lists the registered languages.
func (h *Handler) Languages() []LanguageView {
	stats := h.dict.Stats()
	infos := h.dict.Languages()

	views := make([]LanguageView, 0, len(infos))
	for _, info := range infos {
		views = append(views, LanguageView{ID: info.ID, Label: info.Label, Words: stats[info.ID]})
	}
	return views
}

// Language returns the full dictionary record of id.
func (h *Handler) Language(id string) (domain.Language, error) {
	return h.dict.Snapshot(id)
}

// Dispatch decodes an Event and runs its action. Failures are returned as
// payloads, never as errors: JsonErr for undecodable input, TransErr for
// unresolvable translations and NewTransErr for rejected registrations.
// A successful registration returns a nil payload.
func (h *Handler) Dispatch(ctx context.Context, raw []byte) (interface{}, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return &domain.JsonErr{Content: "invalid event: " + err.Error()}, nil
	}

	switch ev.Action {
	case ActionTranslate:
		var req domain.TransReq
		if err := decodePayload(ev.Payload, &req); err != nil {
			return &domain.JsonErr{Content: "invalid translate request: " + err.Error()}, nil
		}
		resp, err := h.Translate(ctx, req)
		if err != nil {
			return &domain.TransErr{Content: err.Error()}, nil
		}
		return resp, nil

	case ActionRegister:
		var req domain.NewTransReq
		if err := decodePayload(ev.Payload, &req); err != nil {
			return &domain.JsonErr{Content: "invalid register request: " + err.Error()}, nil
		}
		if err := h.Register(ctx, req); err != nil {
			payload := registration.Payload(err)
			return &payload, nil
		}
		return nil, nil

	case ActionLanguages:
		return h.Languages(), nil

	case "":
		return &domain.JsonErr{Content: "action is required"}, nil

	default:
		return &domain.JsonErr{Content: "unknown action: " + ev.Action}, nil
	}
}

func decodePayload(raw jsoniter.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	return json.Unmarshal(raw, v)
}

// validateTransReq checks the request is valid.
func validateTransReq(req domain.TransReq) error {
	if req.From == "" {
		return &RequestError{Msg: "from is required"}
	}
	if req.To == "" {
		return &RequestError{Msg: "to is required"}
	}
	return nil
}

// validateNewTransReq checks the request is valid.
func validateNewTransReq(req domain.NewTransReq) error {
	if req.FromLang == "" {
		return &RequestError{Msg: "from_lang is required"}
	}
	if req.ToLang == "" {
		return &RequestError{Msg: "to_lang is required"}
	}
	if req.Meanings == nil {
		return &RequestError{Msg: "meanings is required"}
	}
	return nil
}

func reasonLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dictionary.ErrUnknownLanguage):
		return "unknown language"
	case errors.Is(err, resolver.ErrInvalidSymbol), errors.Is(err, registration.ErrInvalidSymbol):
		return "invalid symbol"
	case errors.Is(err, resolver.ErrNoMeaning):
		return "no meaning"
	case errors.Is(err, dictionary.ErrWordNotFound):
		return "word not found"
	case errors.Is(err, dictionary.ErrDuplicateMeaning):
		return "duplicate meaning"
	case errors.Is(err, dictionary.ErrDuplicateWord):
		return "duplicate word"
	case errors.Is(err, registration.ErrNoMeanings):
		return "no meanings"
	case errors.Is(err, registration.ErrNotPersisted):
		return "not persisted"
	default:
		return "other"
	}
}
