package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/zeroshot"
	"github.com/soundprediction/zeroshot/pkg/inference"
	"github.com/soundprediction/zeroshot/pkg/labels"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/server/dto"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// TokenHeader carries a caller's own inference token for one request.
const TokenHeader = "X-Inference-Token"

// ClassifyHandler handles classification requests
type ClassifyHandler struct {
	classifier zeroshot.Classifier
	providers  zeroshot.ProviderLister
	logger     *slog.Logger
}

// NewClassifyHandler creates a new classify handler. providers may be nil.
func NewClassifyHandler(c zeroshot.Classifier, providers zeroshot.ProviderLister, logger *slog.Logger) *ClassifyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyHandler{
		classifier: c,
		providers:  providers,
		logger:     logger,
	}
}

func writeError(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error:   errCode,
		Message: message,
		Code:    status,
	})
}

// Classify handles POST /api/v1/classify. Only malformed input is an error;
// provider failures are reported inside a 200 response.
func (h *ClassifyHandler) Classify(c *gin.Context) {
	if h.classifier == nil {
		writeError(c, http.StatusServiceUnavailable, "unavailable", "classifier not initialized")
		return
	}

	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	multi := h.classifier.DefaultMultiLabel()
	if req.MultiLabel != nil {
		multi = *req.MultiLabel
	}

	classReq, err := types.NewClassificationRequest(req.Text, types.LabelSet(req.Labels), multi)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := inference.WithSessionToken(c.Request.Context(), c.GetHeader(TokenHeader))
	res, err := h.classifier.ClassifyRequest(ctx, classReq)
	if err != nil {
		if errors.Is(err, nlp.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "classification failed", "labels", labels.Join(classReq.Labels()), "error", err)
		writeError(c, http.StatusInternalServerError, "classification_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.NewClassifyResponse(res, req.IncludeRaw))
}

// Providers handles GET /api/v1/providers
func (h *ClassifyHandler) Providers(c *gin.Context) {
	resp := dto.ProvidersResponse{Providers: []dto.ProviderInfo{}}
	if h.classifier != nil {
		resp.DefaultMultiLabel = h.classifier.DefaultMultiLabel()
	}
	if h.providers != nil {
		for i, id := range h.providers.Providers() {
			info := dto.ProviderInfo{Position: i + 1, ID: id}
			if p, ok := nlp.GetProvider(id); ok {
				info.Name = p.Name
				info.Description = p.Description
				info.Local = p.IsLocal
				info.Degraded = p.Degraded
			}
			resp.Providers = append(resp.Providers, info)
		}
	}
	c.JSON(http.StatusOK, resp)
}
