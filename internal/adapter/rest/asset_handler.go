package rest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/storage/gridfs"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AssetOpener interface {
	Open(ctx context.Context, handle string) (io.ReadCloser, string, error)
}

type AssetHandler struct {
	assets AssetOpener
	logger *logger.Logger
}

func NewAssetHandler(assets AssetOpener, log *logger.Logger) *AssetHandler {
	return &AssetHandler{assets: assets, logger: log.Named("asset_handler")}
}

func (h *AssetHandler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	rc, contentType, err := h.assets.Open(r.Context(), handle)
	if err != nil {
		if errors.Is(err, gridfs.ErrAssetNotFound) {
			writeProblem(w, http.StatusNotFound, "not_found", "asset not found")
			return
		}
		h.logger.Error("failed to open asset", zap.String("handle", handle), zap.Error(err))
		writeProblem(w, http.StatusBadGateway, "storage_unavailable", "asset store unavailable")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream asset", zap.String("handle", handle), zap.Error(err))
	}
}
