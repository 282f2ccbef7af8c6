package http

import (
	"io"
	"net/http"
)

// getServerVersion answers GET /version with the bare version string, so a
// sync client can compare it without decoding an envelope.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	version := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, version)
}
