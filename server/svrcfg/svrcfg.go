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

package svrcfg

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/recorder"
	"github.com/zintix-labs/autobet/server/logger"
	"github.com/zintix-labs/autobet/server/manager"
	"github.com/zintix-labs/autobet/server/metrics"
	"github.com/zintix-labs/autobet/wallet"
)

// Env 服務端環境設定（.env 或環境變數）
type Env struct {
	Addr          string         `env:"AUTOBET_ADDR"           envDefault:":5808"`
	LogMode       logger.LogMode `env:"AUTOBET_LOG_MODE"       envDefault:"dev"`
	LogBuffer     int            `env:"AUTOBET_LOG_BUFFER"     envDefault:"8192"`
	WriteTimeout  time.Duration  `env:"AUTOBET_WRITE_TIMEOUT"  envDefault:"60s"`
	RedisAddr     string         `env:"AUTOBET_REDIS_ADDR"` // 空字串使用記憶體 store
	RedisPassword string         `env:"AUTOBET_REDIS_PASSWORD"`
	RedisDB       int            `env:"AUTOBET_REDIS_DB"       envDefault:"0"`
	RedisRetries  uint64         `env:"AUTOBET_REDIS_RETRIES"  envDefault:"5"`
	HistoryTTL    time.Duration  `env:"AUTOBET_HISTORY_TTL"    envDefault:"24h"`
	HistoryRounds int            `env:"AUTOBET_HISTORY_ROUNDS" envDefault:"1000"`
	SessionTTL    time.Duration  `env:"AUTOBET_SESSION_TTL"    envDefault:"10m"`
	MaxSessions   int            `env:"AUTOBET_MAX_SESSIONS"   envDefault:"1000"`
	ReapSpec      string         `env:"AUTOBET_REAP_SPEC"      envDefault:"@every 1m"`
	SimWorkers    int            `env:"AUTOBET_SIM_WORKERS"    envDefault:"4"`
}

// LoadEnv 先讀 .env（不存在時略過），再解析環境變數
func LoadEnv(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, errs.WrapKind(err, errs.KindInvalidConfig, "load .env")
	}
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, errs.WrapKind(err, errs.KindInvalidConfig, "parse env")
	}
	return e, nil
}

// ManagerConfig 轉成會話管理器參數
func (e Env) ManagerConfig() manager.Config {
	return manager.Config{
		SessionTTL:   e.SessionTTL,
		MaxSessions:  e.MaxSessions,
		HistoryLimit: min(100, max(e.HistoryRounds, 1)),
	}
}

// SvrCfg 服務組裝所需的依賴；未提供的項目由 Vaild 補上預設
type SvrCfg struct {
	Log     *slog.Logger
	Env     Env
	Lab     *autobet.Lab
	Wallet  *wallet.Memory
	Store   recorder.Store
	Metrics *metrics.Metrics
	Manager *manager.Manager
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}

	// 1 <= SimWorkers <= 64
	sc.Env.SimWorkers = min(64, max(1, sc.Env.SimWorkers))
	if sc.Env.Addr == "" {
		sc.Env.Addr = ":5808"
	}

	if sc.Wallet == nil {
		sc.Wallet = wallet.NewMemory()
	}
	if sc.Store == nil {
		sc.Store = recorder.NewMemoryStore(sc.Env.HistoryRounds)
	}
	if sc.Metrics == nil {
		sc.Metrics = metrics.New()
	}
	if sc.Manager == nil {
		m, err := manager.New(sc.Lab, sc.Wallet, sc.Store, sc.Metrics, sc.Log, sc.Env.ManagerConfig())
		if err != nil {
			return err
		}
		sc.Manager = m
	}
	return nil
}
