package v1

import (
	"net/http"

	"github.com/zintix-labs/autobet/dto"
	"github.com/zintix-labs/autobet/server/netsvr"
)

// StartSession POST /v1/sessions
//
// 回傳 201 與會話快照；餘額不足以下第一注時仍回 201，但狀態已是 STOPPED。
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	req := new(dto.StartSessionRequest)
	if err := dto.DecodeJSON(r, req); err != nil {
		h.fail(w, "start session", err)
		return
	}
	v, err := h.mgr.Start(*req)
	if err != nil {
		h.fail(w, "start session", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// ListSessions GET /v1/sessions?uid=
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mgr.List(r.URL.Query().Get("uid")))
}

// GetSession GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.mgr.Get(netsvr.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// StopSession DELETE /v1/sessions/{id}（可重複呼叫）
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.mgr.Stop(netsvr.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "stop session", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// History GET /v1/sessions/{id}/history?limit=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		h.fail(w, "session history", err)
		return
	}
	hv, err := h.mgr.History(r.Context(), netsvr.URLParam(r, "id"), limit)
	if err != nil {
		h.fail(w, "session history", err)
		return
	}
	writeJSON(w, http.StatusOK, hv)
}
