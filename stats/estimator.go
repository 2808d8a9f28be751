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

package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci"  yaml:"ci"`
}

// Estimate 多會話（多玩家）自動下注的結果評估
type Estimate struct {
	Sessions   int                      `json:"sessions"    yaml:"sessions"`
	Profit     ProfitStat               `json:"profit"      yaml:"profit"`
	Rounds     RoundStat                `json:"rounds"      yaml:"rounds"`
	StopReason map[StopReason]PointStat `json:"stop_reason" yaml:"stop_reason"`
	Winners    PointStat                `json:"winners"     yaml:"winners"` // 結束時淨利 > 0 的比例
}

// ProfitStat 會話淨利分布
type ProfitStat struct {
	Mean   float64   `json:"mean"   yaml:"mean"`
	Std    float64   `json:"std"    yaml:"std"`
	Median PointStat `json:"median" yaml:"median"`
	P10    PointStat `json:"p10"    yaml:"p10"`
	P90    PointStat `json:"p90"    yaml:"p90"`
	Min    float64   `json:"min"    yaml:"min"`
	Max    float64   `json:"max"    yaml:"max"`
}

// RoundStat 會話局數分布
type RoundStat struct {
	Mean    float64 `json:"mean"     yaml:"mean"`
	Std     float64 `json:"std"      yaml:"std"`
	Median  float64 `json:"median"   yaml:"median"`
	WinRate float64 `json:"win_rate" yaml:"win_rate"` // 全部局數的勝率
}

// ============================================================
// ** 對外 : 多會話評估 **
// ============================================================

// EstimateSessions 評估一批已結束會話的最終統計
//
// 1. Profit 敘事 : 淨利的平均、標準差、分位數（含 95% CI）
//
// 2. Rounds 敘事 : 會話平均撐了幾局
//
// 3. StopReason 敘事 : 每種結束原因的比例（Clopper-Pearson 95% CI）
func EstimateSessions(sts []SessionStats) Estimate {
	n := len(sts)
	out := Estimate{Sessions: n, StopReason: make(map[StopReason]PointStat, len(Reasons))}
	if n == 0 {
		return out
	}

	profit := make([]float64, n)
	rounds := make([]float64, n)
	wins, total, winners := 0, 0, 0
	reasonK := make(map[StopReason]int, len(Reasons))
	for i, s := range sts {
		profit[i], _ = s.TotalProfit.Float64()
		rounds[i] = float64(s.RoundsCompleted)
		wins += s.Wins
		total += s.RoundsCompleted
		if s.TotalProfit.IsPositive() {
			winners++
		}
		reasonK[s.StopReason]++
	}

	// 1) Profit
	sorted := make([]float64, n)
	copy(sorted, profit)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(profit, nil)
	if n < 2 {
		std = 0
	}
	medLo, medHi := quantileCI(sorted, 0.5, 0.95)
	p10Lo, p10Hi := quantileCI(sorted, 0.10, 0.95)
	p90Lo, p90Hi := quantileCI(sorted, 0.90, 0.95)
	out.Profit = ProfitStat{
		Mean:   mean,
		Std:    std,
		Median: PointStat{Hat: stat.Quantile(0.5, stat.Empirical, sorted, nil), CI: CI{Lo: medLo, Hi: medHi}},
		P10:    PointStat{Hat: stat.Quantile(0.10, stat.Empirical, sorted, nil), CI: CI{Lo: p10Lo, Hi: p10Hi}},
		P90:    PointStat{Hat: stat.Quantile(0.90, stat.Empirical, sorted, nil), CI: CI{Lo: p90Lo, Hi: p90Hi}},
		Min:    sorted[0],
		Max:    sorted[n-1],
	}

	// 2) Rounds
	rMean, rStd := stat.MeanStdDev(rounds, nil)
	if n < 2 {
		rStd = 0
	}
	sort.Float64s(rounds)
	out.Rounds = RoundStat{
		Mean:   rMean,
		Std:    rStd,
		Median: stat.Quantile(0.5, stat.Empirical, rounds, nil),
	}
	if total > 0 {
		out.Rounds.WinRate = float64(wins) / float64(total)
	}

	// 3) StopReason
	for _, r := range Reasons {
		hat, ci := proportionCICP(reasonK[r], n, 0.95)
		out.StopReason[r] = PointStat{Hat: hat, CI: ci}
	}
	wHat, wCI := proportionCICP(winners, n, 0.95)
	out.Winners = PointStat{Hat: wHat, CI: wCI}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// quantileCI 估「第 q 分位」的上下界（sorted 需已排序）。
// 把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
func quantileCI(sorted []float64, q, confidence float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return sorted[0], sorted[0]
	}

	alpha := 1 - confidence
	k := int(q * float64(n))
	k = min(max(k, 1), n-1)

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	li = min(max(li, 0), n-1)
	ui = min(max(ui, 0), n-1)
	return sorted[li], sorted[ui]
}
