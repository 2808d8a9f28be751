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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/server"
	"github.com/zintix-labs/autobet/server/logger"
	"github.com/zintix-labs/autobet/server/netsvr"
	"github.com/zintix-labs/autobet/server/svrcfg"
)

// 自動下注服務入口：讀 .env / 環境變數，flag 可覆寫位址與 log 模式。
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type config struct {
	EnvFile string
	Addr    string
	LogMode string
}

func loadConfigFromFlags() *config {
	cfg := new(config)
	flag.StringVar(&cfg.EnvFile, "env", ".env", "dotenv file (skipped when missing)")
	flag.StringVar(&cfg.Addr, "addr", "", "listen address, overrides AUTOBET_ADDR")
	flag.StringVar(&cfg.LogMode, "log-mode", "", "log mode: dev|prod|silence, overrides AUTOBET_LOG_MODE")
	flag.Parse()
	return cfg
}

func run() error {
	cfg := loadConfigFromFlags()

	env, err := svrcfg.LoadEnv(cfg.EnvFile)
	if err != nil {
		return err
	}
	if cfg.Addr != "" {
		env.Addr = cfg.Addr
	}
	if cfg.LogMode != "" {
		if env.LogMode, err = logger.ParseLogMode(cfg.LogMode); err != nil {
			return err
		}
	}

	log, ah := logger.NewAsync(env.LogBuffer, env.LogMode)
	defer ah.Close()

	lab, err := autobet.NewDefaultLab()
	if err != nil {
		return err
	}
	store, closeStore, err := server.OpenStore(context.Background(), env, log)
	if err != nil {
		return err
	}

	sCfg := &svrcfg.SvrCfg{
		Log:   log,
		Env:   env,
		Lab:   lab,
		Store: store,
	}
	if err := sCfg.Vaild(); err != nil {
		return err
	}
	svr := netsvr.NewChiServer(env.Addr, netsvr.WithWriteTimeout(env.WriteTimeout))
	a, err := server.Assemble(sCfg, svr, closeStore)
	if err != nil {
		return err
	}

	log.Info("[autobet] listening", slog.String("addr", env.Addr), slog.String("mode", env.LogMode.String()))
	return a.Run()
}
