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

import "github.com/zintix-labs/autobet/errs"

// LossMetric 停損條件所比較的金額來源，由各遊戲 adapter 明確宣告。
type LossMetric uint8

const (
	// LossCumulative 會話累積淨損失：max(0, -totalProfit)
	LossCumulative LossMetric = iota
	// LossLastRound 最近一局輸掉的注額（贏局為 0）
	LossLastRound
)

var lossMetricName = map[LossMetric]string{
	LossCumulative: "cumulative",
	LossLastRound:  "last_round",
}

func (m LossMetric) String() string {
	if s, ok := lossMetricName[m]; ok {
		return s
	}
	return "unknown"
}

func ParseLossMetric(s string) (LossMetric, error) {
	for k, v := range lossMetricName {
		if v == s {
			return k, nil
		}
	}
	return 0, errs.Invalidf("unknown loss metric %q", s)
}

func (m LossMetric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *LossMetric) UnmarshalText(b []byte) error {
	v, err := ParseLossMetric(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
