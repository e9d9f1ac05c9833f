package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/services/asset"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for part headers around a maximum-size file.
const multipartOverhead = 1 << 20

// AssetService defines the asset operations the handler needs
type AssetService interface {
	Upload(ctx context.Context, actorID, campaignID int64, in asset.UploadInput) (*models.Asset, error)
	List(ctx context.Context, campaignID int64) ([]*models.Asset, error)
	URL(ctx context.Context, campaignID, id int64) (string, time.Time, error)
	Open(ctx context.Context, campaignID, id int64) (*models.Asset, io.ReadCloser, error)
	Delete(ctx context.Context, actorID *int64, campaignID, id int64) error
}

// AssetURLResponse is a time-limited download link
type AssetURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AssetHandler handles asset uploads and downloads
type AssetHandler struct {
	assets AssetService
	logger *zap.Logger
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(assets AssetService, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		assets: assets,
		logger: logger,
	}
}

// HandleUpload handles POST /api/v1/campaigns/{campaignID}/assets as
// multipart/form-data with the file in the "file" part.
func (h *AssetHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, asset.MaxAssetSize+multipartOverhead)
	reader, err := r.MultipartReader()
	if err != nil {
		_ = utils.WriteBadRequest(w, "Expected multipart/form-data", nil)
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.writeReadError(w, err)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		uploaded, err := h.assets.Upload(r.Context(), actorID, cid, asset.UploadInput{
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.writeReadError(w, maxErr)
				return
			}
			HandleServiceError(w, r, err, h.logger)
			return
		}
		_ = utils.WriteCreated(w, uploaded)
		return
	}

	_ = utils.WriteBadRequest(w, "Missing file part", map[string]interface{}{"file": "file is required"})
}

// HandleList handles GET /api/v1/campaigns/{campaignID}/assets
func (h *AssetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	assets, err := h.assets.List(r.Context(), cid)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if assets == nil {
		assets = []*models.Asset{}
	}
	_ = utils.WriteOK(w, assets)
}

// HandleURL handles GET /api/v1/campaigns/{campaignID}/assets/{assetID}/url
func (h *AssetHandler) HandleURL(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	url, expires, err := h.assets.URL(r.Context(), cid, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, AssetURLResponse{URL: url, ExpiresAt: expires})
}

// HandleContent handles GET /api/v1/campaigns/{campaignID}/assets/{assetID}/content
// and streams the stored bytes.
func (h *AssetHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	a, body, err := h.assets.Open(r.Context(), cid, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(a.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName))
	w.Header().Set("ETag", strconv.Quote(a.Checksum))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("asset stream interrupted",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Int64("asset_id", id),
			zap.Error(err))
	}
}

// HandleDelete handles DELETE /api/v1/campaigns/{campaignID}/assets/{assetID}
func (h *AssetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.assets.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), cid, id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}

func (h *AssetHandler) ids(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	cid, ok := campaignID(w, r)
	if !ok {
		return 0, 0, false
	}
	id, ok := pathID(w, r, "assetID")
	if !ok {
		return 0, 0, false
	}
	return cid, id, true
}

func (h *AssetHandler) writeReadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		_ = utils.WriteError(w, http.StatusRequestEntityTooLarge, "asset exceeds maximum size",
			map[string]interface{}{"max_bytes": asset.MaxAssetSize})
		return
	}
	_ = utils.WriteBadRequest(w, "Malformed multipart body", nil)
}
