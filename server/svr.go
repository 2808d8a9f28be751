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
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/recorder"
	"github.com/zintix-labs/autobet/server/api"
	"github.com/zintix-labs/autobet/server/app"
	"github.com/zintix-labs/autobet/server/manager"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/server/svrcfg"
)

// Run 組裝並啟動預設服務：chi HTTP server + 會話回收排程，阻塞到收到終止信號。
//
// 所有依賴都透過 SvrCfg 注入；Run 本身不讀檔也不讀環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Vaild(); err != nil {
		// 外層傳入的 logger 可能不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServer(sCfg.Env.Addr, netsvr.WithWriteTimeout(sCfg.Env.WriteTimeout))
	return RunWithSvr(sCfg, svr)
}

// RunWithSvr 同 Run，但由呼叫端注入 NetSvr（自訂 listener、timeout 或掛到既有服務）
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	a, err := Assemble(sCfg, svr)
	if err != nil {
		return err
	}
	sCfg.Log.Info("[autobet] listening", slog.String("addr", sCfg.Env.Addr))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// Assemble 註冊路由並建立 App（未啟動）
//
// closers 會在所有會話收尾之後才執行（例如關閉 Redis 連線）。
func Assemble(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr, closers ...func(context.Context) error) (*app.App, error) {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	if svr == nil {
		return nil, errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return nil, errs.NewFatal("default server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	reaper, err := manager.NewReaper(sCfg.Manager, sCfg.Env.ReapSpec, sCfg.Log)
	if err != nil {
		return nil, err
	}

	a := app.NewWith(svr, reaper)
	a.SetLogger(sCfg.Log)
	// hooks 反序執行
	for i := len(closers) - 1; i >= 0; i-- {
		a.OnStop(closers[i])
	}
	a.OnStop(sCfg.Manager.Close)
	return a, nil
}

// OpenStore 依設定建立歷史紀錄 store：有 Redis 位址時連線 Redis，否則使用記憶體。
// 回傳的 close 需在服務結束時呼叫。
func OpenStore(ctx context.Context, env svrcfg.Env, log *slog.Logger) (recorder.Store, func(context.Context) error, error) {
	if env.RedisAddr == "" {
		return recorder.NewMemoryStore(env.HistoryRounds), func(context.Context) error { return nil }, nil
	}
	client, err := recorder.Connect(ctx, env.RedisAddr, env.RedisPassword, env.RedisDB, env.RedisRetries, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("history store: redis", slog.String("addr", env.RedisAddr))
	return recorder.NewRedisStore(client, env.HistoryTTL, env.HistoryRounds),
		func(context.Context) error { return client.Close() }, nil
}
