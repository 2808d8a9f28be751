package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/server/httperr"
	"github.com/zintix-labs/autobet/server/manager"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/server/svrcfg"
)

// Handler v1 API；所有狀態都在 manager 內
type Handler struct {
	mgr     *manager.Manager
	workers int
	log     *slog.Logger
}

func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Manager == nil {
		return nil, errs.NewFatal("session manager is required")
	}
	return &Handler{mgr: sCfg.Manager, workers: sCfg.Env.SimWorkers, log: sCfg.Log}, nil
}

// Register 掛上 /v1 底下所有路由
func (h *Handler) Register(r netsvr.NetRouter) {
	r.Group("/v1", func(v netsvr.NetRouter) {
		v.Get("/games", h.Games)
		v.Get("/presets", h.Presets)

		v.Get("/sessions", h.ListSessions)
		v.Post("/sessions", h.StartSession)
		v.Get("/sessions/{id}", h.GetSession)
		v.Delete("/sessions/{id}", h.StopSession)
		v.Get("/sessions/{id}/history", h.History)

		v.Get("/wallets/{uid}", h.Balance)
		v.Post("/wallets/{uid}/deposit", h.Deposit)

		v.Post("/sim", h.Sim)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}

// intQuery 讀取非負整數 query，缺少時回傳 def
func intQuery(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errs.Invalidf("%s must be a non-negative integer", key)
	}
	return v, nil
}
