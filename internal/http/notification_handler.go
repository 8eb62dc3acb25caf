package http

import (
	"net/http"

	"github.com/fjod/go_grocery/internal/domain"
)

type LatestNotifications interface {
	Get(userID string) (domain.Notification, bool)
}

type NotificationHandler struct {
	latest LatestNotifications
}

func NewNotificationHandler(latest LatestNotifications) *NotificationHandler {
	return &NotificationHandler{latest: latest}
}

// GET /api/v1/notifications/latest
func (h *NotificationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	n, ok := h.latest.Get(user.ID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, n)
}
