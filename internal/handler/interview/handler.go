package interview

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	interviewService "github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

var errNoOwner = apperror.Unauthorized("UNAUTHENTICATED", "missing or invalid access token")

// Handler 试镜访谈的HTTP处理器
type Handler struct {
	svc *interviewService.Service
}

// New 创建访谈处理器
func New(svc *interviewService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册访谈相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", h.handleStart)
		r.Get("/session/{sessionID}", h.handleGetSession)
		r.Post("/session/{sessionID}/message", h.handleMessage)
		r.Post("/session/{sessionID}/generate", h.handleGenerate)
		r.Get("/profiles", h.handleListProfiles)
		r.Get("/profiles/{profileID}", h.handleGetProfile)
	})
}

// handleStart 开始一次试镜
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.RespondServiceError(w, "interview", errNoOwner)
		return
	}

	var payload struct {
		DisplayName string `json:"displayName"`
		GenderHint  string `json:"genderHint"`
		Language    string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}

	result, err := h.svc.StartInterview(r.Context(), interviewService.StartRequest{
		OwnerID:     ownerID,
		DisplayName: payload.DisplayName,
		GenderHint:  payload.GenderHint,
		Locale:      utils.RequestLocale(r, payload.Language),
	})
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondData(w, http.StatusCreated, result)
}

// handleMessage 推进一轮对话
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}

	result, err := h.svc.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Message)
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondData(w, http.StatusOK, result)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondData(w, http.StatusOK, view)
}

// handleGenerate 生成人格档案
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GenerateProfile(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondMessage(w, http.StatusCreated, p, "profile generated")
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.RespondServiceError(w, "interview", errNoOwner)
		return
	}

	profiles, err := h.svc.ListProfiles(r.Context(), ownerID)
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondData(w, http.StatusOK, profiles)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.RespondServiceError(w, "interview", errNoOwner)
		return
	}

	p, err := h.svc.GetProfile(r.Context(), ownerID, chi.URLParam(r, "profileID"))
	if err != nil {
		utils.RespondServiceError(w, "interview", err)
		return
	}
	utils.RespondData(w, http.StatusOK, p)
}
