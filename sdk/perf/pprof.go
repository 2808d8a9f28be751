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

package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// RunPProf 依 mode 決定是否包一層 profiling 執行 exe；失敗直接 panic（CLI 用）
//
// Usage like:
//
//	go run ./cmd/run -p cpu
//	go run ./cmd/run -p heap -player 10000 -worker 8
func RunPProf(exe func(), mode string) {
	if err := Profile(DefaultDir, mode, exe); err != nil {
		panic(err)
	}
}

// Profile 執行 exe 並把對應的 profile 寫到 dir/<mode>.pprof
//
//   - "" 或未知 mode: 只執行 exe
//   - cpu: exe 全程取樣，也可以拿來做構建時給 pgo 的 blueprint
//   - heap: exe 結束後 GC 一次再拍 in-use 快照
//   - allocs / goroutine: exe 結束後寫出累積配置 / 協程快照
func Profile(dir string, mode string, exe func()) error {
	switch mode {
	case "cpu":
		return profileCPU(dir, exe)
	case "heap", "allocs", "goroutine":
		exe()
		return snapshot(dir, mode)
	default:
		exe()
		return nil
	}
}

func create(dir string, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pprof dir %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s.pprof: %w", name, err)
	}
	return f, nil
}

func profileCPU(dir string, exe func()) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("failed to start pprof: %w", err)
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// snapshot 注意 heap 與 cpu 是不同的 profile，cpu 檔不含記憶體配置資訊
func snapshot(dir string, name string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile %s", name)
	}
	if name == "heap" {
		// 盡量讓快照貼近最新狀態
		runtime.GC()
	}
	f, err := create(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}
