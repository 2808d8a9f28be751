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

package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/autobet/server/api/v1"
	"github.com/zintix-labs/autobet/server/metrics"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/server/netsvr/middleware"
	"github.com/zintix-labs/autobet/server/svrcfg"
)

// RegisterRoutes 註冊 middleware 與所有路由；sCfg 需已通過 Vaild
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log, sCfg.Metrics) // 1. 註冊 middleware
	registerOps(svr, sCfg.Metrics)                  // 2. 健康檢查 / metrics
	return registerV1API(svr, sCfg)                 // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger, m *metrics.Metrics) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	if m != nil {
		svr.Use(m.Middleware)
	}
	svr.Use(middleware.Compression)
}

func registerOps(svr netsvr.NetRouter, m *metrics.Metrics) {
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if m != nil {
		svr.Handle("/metrics", m.Handler())
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	h.Register(svr)
	return nil
}
