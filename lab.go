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

package autobet

import (
	"io/fs"

	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/presets"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/wallet"
)

// Lab 組裝入口：遊戲註冊表、會話預設設定與亂數工廠。
//
// Lab 建立後視為唯讀，可被多個 goroutine 共用。
type Lab struct {
	games   *games.Registry
	presets *setting.PresetRegistry
	pf      core.PRNGFactory
}

// Presets 把一或多個預設設定來源打包成 NewLab 需要的參數
func Presets(src ...fs.FS) []fs.FS {
	return src
}

// NewLab 建立 Lab；presetFS 內的每個 *.yaml 都必須通過設定檢查
func NewLab(pf core.PRNGFactory, reg *games.Registry, presetFS []fs.FS) (*Lab, error) {
	if pf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if reg == nil || len(reg.Names()) == 0 {
		return nil, errs.NewFatal("game registry required")
	}
	pr := setting.NewPresetRegistry()
	for _, src := range presetFS {
		loaded, err := setting.LoadPresets(src)
		if err != nil {
			return nil, err
		}
		for _, c := range loaded.All() {
			if err := pr.Add(c); err != nil {
				return nil, err
			}
		}
	}
	return &Lab{games: reg, presets: pr, pf: pf}, nil
}

// NewDefaultLab 內建遊戲 + 內嵌預設設定 + PCG64
func NewDefaultLab() (*Lab, error) {
	return NewLab(core.Default(), games.Default(), Presets(presets.FS))
}

func (l *Lab) Games() []games.Entry { return l.games.All() }

func (l *Lab) Game(name string) (games.Entry, error) { return l.games.Get(name) }

func (l *Lab) Presets() []setting.SessionConfig { return l.presets.All() }

// Preset 取得預設設定（回傳副本）
func (l *Lab) Preset(name string) (setting.SessionConfig, error) {
	return l.presets.Get(name)
}

// NewAdapter 以指定 seed 建立某位玩家某款遊戲的轉接層
func (l *Lab) NewAdapter(game string, p games.Params, w wallet.Wallet, uid string, seed int64, opts ...games.AdapterOption) (*games.Adapter, error) {
	return games.NewAdapter(l.games, game, p, w, uid, l.pf.New(seed), opts...)
}

// NewSimulator 建立批次模擬器（seed 由 crypto/rand 產生）
func (l *Lab) NewSimulator(game string, p games.Params, cfg setting.SessionConfig) (*Simulator, error) {
	return l.NewSimulatorWithSeed(game, p, cfg, core.NewSeed())
}

// NewSimulatorWithSeed 同一 seed 與參數會得到相同的批次結果
func (l *Lab) NewSimulatorWithSeed(game string, p games.Params, cfg setting.SessionConfig, seed int64) (*Simulator, error) {
	return newSimulator(l, game, p, cfg, seed)
}
