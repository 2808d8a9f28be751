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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/server/logger"
)

func TestLoadEnvDefaults(t *testing.T) {
	e, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
	if e.Addr != ":5808" || e.LogMode != logger.ModeDev || e.SessionTTL != 10*time.Minute {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if e.ReapSpec != "@every 1m" || e.RedisAddr != "" {
		t.Fatalf("unexpected defaults: %+v", e)
	}
}

func TestLoadEnvFromFileAndVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "AUTOBET_ADDR=:9000\nAUTOBET_LOG_MODE=prod\nAUTOBET_SESSION_TTL=30s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// .env 寫入的變數由 godotenv 設定，測試結束要清掉
	t.Cleanup(func() {
		os.Unsetenv("AUTOBET_LOG_MODE")
		os.Unsetenv("AUTOBET_SESSION_TTL")
	})
	t.Setenv("AUTOBET_MAX_SESSIONS", "7")
	// godotenv 不覆蓋已存在的變數
	t.Setenv("AUTOBET_ADDR", ":7000")

	e, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e.Addr != ":7000" {
		t.Fatalf("env var should win over .env, got %s", e.Addr)
	}
	if e.LogMode != logger.ModeProd || e.SessionTTL != 30*time.Second || e.MaxSessions != 7 {
		t.Fatalf("unexpected env: %+v", e)
	}
}

func TestLoadEnvBadMode(t *testing.T) {
	t.Setenv("AUTOBET_LOG_MODE", "loud")
	if _, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); errs.KindOf(err) != errs.KindInvalidConfig {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestVaildFillsDefaults(t *testing.T) {
	if err := (&SvrCfg{}).Vaild(); err == nil {
		t.Fatalf("lab should be required")
	}
	lab, err := autobet.NewDefaultLab()
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	sc := &SvrCfg{Lab: lab, Log: logger.NewDefaultLogger(logger.ModeSilence), Env: Env{SimWorkers: 1000}}
	if err := sc.Vaild(); err != nil {
		t.Fatalf("vaild: %v", err)
	}
	if sc.Manager == nil || sc.Metrics == nil || sc.Store == nil || sc.Wallet == nil {
		t.Fatalf("defaults not filled: %+v", sc)
	}
	if sc.Env.SimWorkers != 64 || sc.Env.Addr != ":5808" {
		t.Fatalf("clamp failed: %+v", sc.Env)
	}
}
