package http

import (
	"encoding/json"
	"net/http"

	"github.com/davidbz/markl/internal/catalog"
	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/resume"
	"github.com/davidbz/markl/internal/review"
)

type providerKeyRequest struct {
	Provider domain.ProviderID `json:"provider" validate:"required"`
	APIKey   string            `json:"apiKey"`
}

type testAllRequest struct {
	APIKeys map[domain.ProviderID]string `json:"apiKeys" validate:"required"`
}

type chatResponse struct {
	Content string `json:"content"`
}

type modelsResponse struct {
	Models []catalog.Model `json:"models"`
}

type estimateResponse struct {
	Estimate *domain.CostEstimate `json:"estimate"`
}

type compareResponse struct {
	Estimates []domain.CostEstimate `json:"estimates"`
}

type applyDecisions struct {
	Accept    []string `json:"accept"`
	Reject    []string `json:"reject"`
	AcceptAll bool     `json:"acceptAll"`
	RejectAll bool     `json:"rejectAll"`
}

type applyRequest struct {
	Suggestions []domain.AISuggestion `json:"suggestions" validate:"required"`
	Decisions   applyDecisions        `json:"decisions"`
	Resume      json.RawMessage       `json:"resume,omitempty"`
}

type applyResponse struct {
	Resume      json.RawMessage       `json:"resume,omitempty"`
	Suggestions []domain.AISuggestion `json:"suggestions"`
	Changes     []domain.FieldChange  `json:"changes"`
	Annotations []review.Annotation   `json:"annotations"`
	Summary     review.Summary        `json:"summary"`
}

// HandleTest probes one provider with the caller's key.
func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req providerKeyRequest
	if err := h.decode(w, r, &req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, domain.ConnectionResult{Error: err.Error()})
		return
	}
	if req.APIKey == "" {
		writeJSON(ctx, w, http.StatusBadRequest, domain.ConnectionResult{
			Provider: req.Provider,
			Error:    "provider and apiKey are required",
		})
		return
	}

	result := h.gateway.TestConnection(ctx, req.Provider, req.APIKey)
	status := http.StatusOK
	if !result.Success {
		status = domain.StatusForErrorType(result.ErrorType)
	}

	writeJSON(ctx, w, status, result)
}

// HandleTestAll probes every provider a key was supplied for.
func (h *Handler) HandleTestAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req testAllRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string][]domain.ConnectionResult{
		"results": h.gateway.TestAll(ctx, req.APIKeys),
	})
}

// HandleChat forwards raw messages to a provider.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.ChatRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	content, err := h.gateway.Chat(ctx, &req)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, chatResponse{Content: content})
}

// HandleModels returns the fallback model catalog of a provider.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req providerKeyRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	models, err := h.catalogs.Models(req.Provider)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, modelsResponse{Models: models})
}

// HandleEnhance runs an enhancement. Malformed requests get a 400; failures past
// validation are reported inside the result envelope.
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.EnhanceRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	result := h.enhancer.Enhance(ctx, &req)
	observability.FromContext(ctx).Info("enhancement finished",
		observability.Bool("success", result.Success),
		observability.Int("suggestions", len(result.Suggestions)),
	)

	writeJSON(ctx, w, http.StatusOK, result)
}

// HandleRefine re-runs an enhancement with refinement instructions.
func (h *Handler) HandleRefine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.RefineRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.enhancer.Refine(ctx, &req))
}

// HandleEstimate estimates one provider/model pair. Unknown pairs yield a null estimate.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.EstimateRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	resp := estimateResponse{}
	if estimate, ok := h.gateway.EstimateCost(ctx, req); ok {
		resp.Estimate = &estimate
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// HandleCompare ranks the cheapest models of every provider for a request.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.EstimateRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, compareResponse{
		Estimates: h.estimator.CompareProvidersForRequest(ctx, req),
	})
}

// HandleApply runs review decisions and merges accepted changes into the supplied resume.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req applyRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	session, err := review.NewSession(req.Suggestions)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	for _, id := range req.Decisions.Accept {
		if err := session.AcceptOne(id); err != nil {
			writeError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for _, id := range req.Decisions.Reject {
		if err := session.RejectOne(id); err != nil {
			writeError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Decisions.AcceptAll {
		session.AcceptAll()
	}
	if req.Decisions.RejectAll {
		session.RejectAll()
	}

	changes := session.ComputeDiff()
	resp := applyResponse{
		Suggestions: session.Suggestions(),
		Changes:     changes,
		Annotations: review.AnnotateAll(h.annotator, changes),
		Summary:     session.Summary(),
	}

	if len(req.Resume) > 0 {
		merged, err := resume.Apply(req.Resume, changes)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}
		resp.Resume = merged
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
