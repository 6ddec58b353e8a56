package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

var errCharacterNotFound = apperror.NotFound("CHARACTER_NOT_FOUND", "character not found")

// Handler 角色目录的HTTP处理器
type Handler struct {
	characters character.Store
}

// New 创建角色目录处理器
func New(characters character.Store) *Handler {
	return &Handler{characters: characters}
}

// RegisterRoutes 注册角色目录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/characters", h.handleListCharacters)
	r.Get("/characters/{characterID}", h.handleGetCharacter)
}

// handleListCharacters 列出所有角色
func (h *Handler) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	utils.RespondData(w, http.StatusOK, h.characters.List())
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, ok := h.characters.FindByID(chi.URLParam(r, "characterID"))
	if !ok {
		utils.RespondServiceError(w, "catalog", errCharacterNotFound)
		return
	}
	utils.RespondData(w, http.StatusOK, c)
}
