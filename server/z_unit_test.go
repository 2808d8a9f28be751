// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/recorder"
	"github.com/zintix-labs/autobet/server/logger"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/server/svrcfg"
)

func newCfg(t *testing.T) *svrcfg.SvrCfg {
	t.Helper()
	lab, err := autobet.NewDefaultLab()
	if err != nil {
		t.Fatal(err)
	}
	return &svrcfg.SvrCfg{
		Log: logger.NewDefaultLogger(logger.ModeSilence),
		Env: svrcfg.Env{Addr: "127.0.0.1:0", ReapSpec: "@every 1m", HistoryRounds: 100},
		Lab: lab,
	}
}

func TestAssembleRoutesAndClosers(t *testing.T) {
	sCfg := newCfg(t)
	svr := netsvr.NewChiServer(sCfg.Env.Addr)
	closed := 0
	a, err := Assemble(sCfg, svr, func(context.Context) error { closed++; return nil })
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	svr.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("healthz: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	svr.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/games", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("games: %d", rr.Code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.RunContext(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closer called %d times", closed)
	}
}

func TestAssembleRejectsNilServer(t *testing.T) {
	if _, err := Assemble(newCfg(t), nil); err == nil {
		t.Fatal("nil svr should fail")
	}
}

func TestOpenStore(t *testing.T) {
	log := logger.NewDefaultLogger(logger.ModeSilence)

	st, closeFn, err := OpenStore(context.Background(), svrcfg.Env{HistoryRounds: 10}, log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*recorder.MemoryStore); !ok {
		t.Fatalf("want memory store, got %T", st)
	}
	if err := closeFn(context.Background()); err != nil {
		t.Fatal(err)
	}

	mr := miniredis.RunT(t)
	env := svrcfg.Env{RedisAddr: mr.Addr(), RedisRetries: 1, HistoryTTL: 0, HistoryRounds: 10}
	st, closeFn, err = OpenStore(context.Background(), env, log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*recorder.RedisStore); !ok {
		t.Fatalf("want redis store, got %T", st)
	}
	if err := closeFn(context.Background()); err != nil {
		t.Fatal(err)
	}
}
