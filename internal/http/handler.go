package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/dig"

	"github.com/davidbz/markl/internal/catalog"
	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/modelsdev"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/review"
	"github.com/davidbz/markl/internal/usage"
)

const maxBodyBytes = 5 << 20

// HandlerParams are the handler's injected dependencies.
type HandlerParams struct {
	dig.In

	Gateway   *domain.GatewayService
	Enhancer  *domain.EnhancementService
	Estimator *domain.CostEstimator
	Tracker   *usage.Tracker
	Catalogs  catalog.Set
	ModelsDev *modelsdev.Client
	Annotator review.Annotator
}

// Handler handles HTTP requests.
type Handler struct {
	gateway   *domain.GatewayService
	enhancer  *domain.EnhancementService
	estimator *domain.CostEstimator
	tracker   *usage.Tracker
	catalogs  catalog.Set
	modelsDev *modelsdev.Client
	annotator review.Annotator
	validate  *validator.Validate
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(p HandlerParams) *Handler {
	annotator := p.Annotator
	if annotator == nil {
		annotator = review.NewHeuristicAnnotator()
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		gateway:   p.Gateway,
		enhancer:  p.Enhancer,
		estimator: p.Estimator,
		tracker:   p.Tracker,
		catalogs:  p.Catalogs,
		modelsDev: p.ModelsDev,
		annotator: annotator,
		validate:  validate,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleNotFound answers unknown routes with a JSON 404.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, http.StatusNotFound, fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path))
}

// decode reads a JSON body into v and validates its struct tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Message: "request body is required"}
		}
		return &domain.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}

	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domain.ValidationError{
				Field:   verrs[0].Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", verrs[0].Tag()),
			}
		}
		return &domain.ValidationError{Message: err.Error()}
	}

	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, errorResponse{Error: message})
}

// writeDomainError maps an error onto its HTTP status and logs server-side failures.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		observability.FromContext(ctx).Error("request failed", observability.Error(err))
	}
	writeError(ctx, w, status, err.Error())
}
