package media

import (
	"errors"
	"net/http"
	"strconv"

	"innkeep/internal/auth"
	"innkeep/internal/models"

	"github.com/gorilla/mux"
)

// PhotoFinder — поиск метаданных фото; реализуется репозиторием отчётов.
type PhotoFinder interface {
	GetPhoto(id uint) (models.ReportPhoto, error)
}

type Handler struct {
	storage  *Storage
	photos   PhotoFinder
	sessions *auth.Sessions
}

func NewHandler(storage *Storage, photos PhotoFinder, sessions *auth.Sessions) *Handler {
	return &Handler{storage: storage, photos: photos, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/media/{photo_id:[0-9]+}/{kind}", h.sessions.RequireAction(h.serve)).Methods(http.MethodGet)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	if kind != "thumb" && kind != "original" {
		http.Error(w, "unknown media kind", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(vars["photo_id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	photo, err := h.photos.GetPhoto(uint(id))
	if err != nil {
		// Репозиторий отдаёт свой sentinel; для клиента всё равно 404.
		http.NotFound(w, r)
		return
	}

	path, err := h.storage.Resolve(photo, kind)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, path)
}
