package v1

import (
	"net/http"

	"github.com/zintix-labs/autobet/dto"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
)

// Sim POST /v1/sim
//
// 以獨立錢包跑 players 個會話（停頓強制為 0），回傳批次統計。
// 請求被取消時模擬會中止並回傳錯誤。
func (h *Handler) Sim(w http.ResponseWriter, r *http.Request) {
	req := new(dto.SimRequest)
	if err := dto.DecodeJSON(r, req); err != nil {
		h.fail(w, "sim", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, "sim", err)
		return
	}
	lab := h.mgr.Lab()
	if _, err := lab.Game(req.Game); err != nil {
		h.fail(w, "sim", err)
		return
	}
	cfg, err := dto.ResolveConfig(lab, req.Preset, req.Config)
	if err != nil {
		h.fail(w, "sim", err)
		return
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	sim, err := lab.NewSimulatorWithSeed(req.Game, req.Params, cfg, seed)
	if err != nil {
		h.fail(w, "sim", errs.Wrap(err, "build simulator: "+req.Game))
		return
	}
	workers := h.workers
	if req.Workers > 0 {
		workers = min(req.Workers, h.workers)
	}
	report, used, err := sim.SimPlayers(r.Context(), workers, req.Players, req.Balance, false)
	if err != nil {
		h.fail(w, "sim", errs.Wrap(err, "simulate: "+req.Game))
		return
	}
	writeJSON(w, http.StatusOK, dto.SimView{Report: report, Seed: seed, UsedTime: used.Milliseconds()})
}
