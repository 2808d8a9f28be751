package v1

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/dto"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/wallet"
)

type balanceView struct {
	UID     string          `json:"uid"`
	Balance decimal.Decimal `json:"balance"`
	Entries []wallet.Entry  `json:"entries,omitempty"`
}

// Balance GET /v1/wallets/{uid}?entries=1
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	uid := netsvr.URLParam(r, "uid")
	bv := balanceView{UID: uid, Balance: h.mgr.Wallet().Balance(uid)}
	if r.URL.Query().Get("entries") != "" {
		bv.Entries = h.mgr.Wallet().Entries(uid)
	}
	writeJSON(w, http.StatusOK, bv)
}

// Deposit POST /v1/wallets/{uid}/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	req := new(dto.DepositRequest)
	if err := dto.DecodeJSON(r, req); err != nil {
		h.fail(w, "deposit", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, "deposit", err)
		return
	}
	uid := netsvr.URLParam(r, "uid")
	bal, err := h.mgr.Wallet().Deposit(uid, req.Amount)
	if err != nil {
		h.fail(w, "deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{UID: uid, Balance: bal})
}
