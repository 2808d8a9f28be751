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

package setting

import (
	"io/fs"
	"path"
	"slices"

	"github.com/zintix-labs/autobet/errs"
)

// PresetRegistry 以名稱索引的會話設定樣板（唯讀）。
type PresetRegistry struct {
	presets map[string]SessionConfig
}

func NewPresetRegistry() *PresetRegistry {
	return &PresetRegistry{presets: make(map[string]SessionConfig)}
}

// LoadPresets 讀取 fsys 根目錄下所有 *.yaml，每個檔案一份 SessionConfig。
// 未填 name 時以檔名（去副檔名）作為名稱。
func LoadPresets(fsys fs.FS) (*PresetRegistry, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, errs.Wrap(err, "glob presets failed")
	}
	pr := &PresetRegistry{presets: make(map[string]SessionConfig, len(files))}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, errs.Wrap(err, "read preset failed: "+f)
		}
		c, err := GetSessionConfigByYAML(data)
		if err != nil {
			return nil, errs.Wrap(err, "load preset failed: "+f)
		}
		if c.Name == "" {
			c.Name = f[:len(f)-len(path.Ext(f))]
		}
		if err := pr.Add(*c); err != nil {
			return nil, err
		}
	}
	return pr, nil
}

// Add 註冊一份設定，名稱重複視為錯誤。
func (pr *PresetRegistry) Add(c SessionConfig) error {
	if pr.presets == nil {
		pr.presets = make(map[string]SessionConfig)
	}
	if c.Name == "" {
		return errs.Invalidf("preset name is required")
	}
	if _, ok := pr.presets[c.Name]; ok {
		return errs.Invalidf("duplicate preset %q", c.Name)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	pr.presets[c.Name] = c
	return nil
}

// Get 依名稱取得設定（值拷貝）
func (pr *PresetRegistry) Get(name string) (SessionConfig, error) {
	c, ok := pr.presets[name]
	if !ok {
		return SessionConfig{}, errs.NotFoundf("preset not found: %s", name)
	}
	return c, nil
}

// Names 回傳排序後的名稱列表
func (pr *PresetRegistry) Names() []string {
	out := make([]string, 0, len(pr.presets))
	for k := range pr.presets {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// All 依名稱排序回傳所有設定
func (pr *PresetRegistry) All() []SessionConfig {
	names := pr.Names()
	out := make([]SessionConfig, 0, len(names))
	for _, n := range names {
		out = append(out, pr.presets[n])
	}
	return out
}
