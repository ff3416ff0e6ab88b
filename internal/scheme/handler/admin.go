package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/platform/httputil"
	"sarkar/pkg/requestcontext"
)

// Ingester loads schemes into the catalog.
type Ingester interface {
	Ingest(ctx context.Context, schemes []models.Scheme) (int, error)
}

// IngestRequest is the body of POST /admin/schemes.
type IngestRequest struct {
	Schemes []models.Scheme `json:"schemes"`
}

func (r *IngestRequest) Validate() error {
	if len(r.Schemes) == 0 {
		return dErrors.New(dErrors.CodeValidation, `Field "schemes" must be a non-empty array.`)
	}
	return nil
}

type IngestResponse struct {
	Message  string `json:"message"`
	Ingested int    `json:"ingested"`
}

// AdminHandler exposes catalog ingestion to operators.
type AdminHandler struct {
	ingester Ingester
	logger   *slog.Logger
}

func NewAdmin(ingester Ingester, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{ingester: ingester, logger: logger}
}

// Register mounts admin endpoints. The router must already check the admin token.
func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/schemes", h.HandleIngest)
}

// HandleIngest handles POST /admin/schemes. The whole batch is rejected when
// any scheme fails validation.
func (h *AdminHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IngestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	n, err := h.ingester.Ingest(ctx, req.Schemes)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog ingestion rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "catalog ingested",
		"request_id", requestID,
		"schemes", n,
	)
	httputil.WriteJSON(w, http.StatusOK, IngestResponse{Message: "Schemes ingested.", Ingested: n})
}
