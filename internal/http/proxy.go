package http

import (
	"net/http"

	"github.com/davidbz/markl/internal/observability"
)

const logoCacheControl = "public, max-age=86400"

// HandleModelsDev passes the models.dev catalog through unchanged.
func (h *Handler) HandleModelsDev(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.modelsDev.Catalog(ctx)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		observability.FromContext(ctx).Warn("failed to write models.dev response", observability.Error(err))
	}
}

// HandleLogo proxies a provider logo, falling back to a default image.
func (h *Handler) HandleLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.modelsDev.Logo(ctx, r.PathValue("provider"))
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Cache-Control", logoCacheControl)
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		observability.FromContext(ctx).Warn("failed to write logo response", observability.Error(err))
	}
}
