package devapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"innkeep/internal/logs"
	"innkeep/internal/models"
	"innkeep/internal/registry"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler — API для планшетов: регистрация и heartbeat.
// Авторизация регистраций — общий секрет из конфига, прошитый в приложение.
type Handler struct {
	secret string
	repo   *registry.Repo
}

func NewHandler(secret string, repo *registry.Repo) *Handler {
	return &Handler{secret: secret, repo: repo}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/devices/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{device_id}/heartbeat", h.heartbeat).Methods(http.MethodPost)
}

type registerResponse struct {
	DeviceID string              `json:"device_id"`
	Status   models.DeviceStatus `json:"status"`
	Created  bool                `json:"created"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad request", "malformed form body", nil)
		return
	}
	if h.secret == "" {
		models.WriteProblem(w, http.StatusServiceUnavailable, "registration disabled",
			"no shared secret configured", nil)
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.PostFormValue("secret")), []byte(h.secret)) != 1 {
		models.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "invalid registration secret", nil)
		return
	}

	deviceID := strings.TrimSpace(r.PostFormValue("device_id"))
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	alg := strings.TrimSpace(r.PostFormValue("public_key_alg"))

	d, created, err := h.repo.RegisterPending(deviceID, name, alg)
	if err != nil {
		logs.Logger.Errorf("device register %s: %v", deviceID, err)
		models.WriteProblem(w, http.StatusInternalServerError, "internal error", "", nil)
		return
	}
	if created {
		logs.Logger.Infof("device %s registered, pending activation", d.DeviceID)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(registerResponse{
		DeviceID: d.DeviceID,
		Status:   d.Status,
		Created:  created,
	})
}

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimSpace(mux.Vars(r)["device_id"])
	if deviceID == "" {
		models.WriteProblem(w, http.StatusBadRequest, "bad request", "missing device id", nil)
		return
	}
	if err := h.repo.TouchLastSeen(deviceID, time.Now().UTC()); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			models.WriteProblem(w, http.StatusNotFound, "unknown device", "", nil)
			return
		}
		models.WriteProblem(w, http.StatusInternalServerError, "internal error", "", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
