package consultation

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	consultationService "github.com/salt-byte/cinematic-mirror/backend/internal/service/consultation"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

// maxVideoChatBody caps a video-chat request including its base64 frame.
const maxVideoChatBody = 8 << 20

var (
	errNoOwner      = apperror.Unauthorized("UNAUTHENTICATED", "missing or invalid access token")
	errMissingID    = apperror.Validation("PROFILE_ID_REQUIRED", "profileId is required")
	errInvalidImage = apperror.Validation("INVALID_IMAGE", "image must be base64 or a data URL")
)

// Handler 造型咨询的HTTP处理器
type Handler struct {
	svc *consultationService.Service
	ws  *WebSocketHandler
}

// New 创建咨询处理器
func New(svc *consultationService.Service) *Handler {
	return &Handler{svc: svc, ws: NewWebSocketHandler(svc)}
}

// RegisterRoutes 注册咨询相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/consultation", func(r chi.Router) {
		r.Post("/start", h.handleStart)
		r.Post("/session/{sessionID}/message", h.handleMessage)
		r.Delete("/session/{sessionID}", h.handleEnd)
		r.Post("/video-chat", h.handleVideoChat)
		h.ws.RegisterWebSocketRoutes(r)
	})
}

// handleStart 基于档案开始咨询
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.RespondServiceError(w, "consultation", errNoOwner)
		return
	}

	var payload struct {
		ProfileID string `json:"profileId"`
		Language  string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	if strings.TrimSpace(payload.ProfileID) == "" {
		utils.RespondServiceError(w, "consultation", errMissingID)
		return
	}

	result, err := h.svc.StartConsultation(r.Context(), ownerID, payload.ProfileID, utils.RequestLocale(r, payload.Language))
	if err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	utils.RespondData(w, http.StatusCreated, result)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}

	reply, err := h.svc.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Message)
	if err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	utils.RespondData(w, http.StatusOK, reply)
}

// handleEnd 结束咨询
func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndConsultation(chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, nil, "consultation ended")
}

// handleVideoChat 处理一帧画面加一句提问
func (h *Handler) handleVideoChat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.RespondServiceError(w, "consultation", errNoOwner)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxVideoChatBody)
	var payload struct {
		ProfileID string `json:"profileId"`
		Message   string `json:"message"`
		Image     string `json:"image"`
		MimeType  string `json:"mimeType"`
		Language  string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	if strings.TrimSpace(payload.ProfileID) == "" {
		utils.RespondServiceError(w, "consultation", errMissingID)
		return
	}

	image, mimeType, err := decodeImage(payload.Image, payload.MimeType)
	if err != nil {
		utils.RespondServiceError(w, "consultation", errInvalidImage)
		return
	}

	result, err := h.svc.VideoChat(r.Context(), consultationService.VideoRequest{
		OwnerID:   ownerID,
		ProfileID: payload.ProfileID,
		Message:   payload.Message,
		Image:     image,
		MimeType:  mimeType,
		Locale:    utils.RequestLocale(r, payload.Language),
	})
	if err != nil {
		utils.RespondServiceError(w, "consultation", err)
		return
	}
	utils.RespondData(w, http.StatusOK, result)
}

// decodeImage accepts raw base64 or a data URL such as "data:image/png;base64,...".
// A mime type carried by the data URL wins over the explicit one.
func decodeImage(raw, mimeType string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, mimeType, nil
	}

	if strings.HasPrefix(raw, "data:") {
		header, data, found := strings.Cut(raw, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, "", errInvalidImage
		}
		if declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"); declared != "" {
			mimeType = declared
		}
		raw = data
	}

	image, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", err
	}
	return image, mimeType, nil
}
