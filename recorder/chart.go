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

package recorder

// ChartPoint 累積損益曲線上的一點
type ChartPoint struct {
	Round  int     `json:"x"`
	Profit float64 `json:"y"`
	Win    bool    `json:"win"`
}

// ChartBuffer 長會話用的抽樣緩衝：到達 2*Max 點時隔點保留（首尾必留）
type ChartBuffer struct {
	Points []ChartPoint `json:"points"`
	Max    int          `json:"-"`
}

func NewChartBuffer(max int) *ChartBuffer {
	if max <= 0 {
		max = 50
	}
	return &ChartBuffer{
		Points: make([]ChartPoint, 0, max),
		Max:    max,
	}
}

func (cb *ChartBuffer) Push(p ChartPoint) {
	cb.Points = append(cb.Points, p)
	if len(cb.Points) < cb.Max*2 {
		return
	}
	decimated := make([]ChartPoint, 0, cb.Max+1)
	decimated = append(decimated, cb.Points[0])
	for i := 2; i < len(cb.Points)-1; i += 2 {
		decimated = append(decimated, cb.Points[i])
	}
	decimated = append(decimated, cb.Points[len(cb.Points)-1])
	cb.Points = decimated
}

// Snapshot 複製目前的點
func (cb *ChartBuffer) Snapshot() []ChartPoint {
	out := make([]ChartPoint, len(cb.Points))
	copy(out, cb.Points)
	return out
}

func (cb *ChartBuffer) Reset() {
	cb.Points = cb.Points[:0]
}
