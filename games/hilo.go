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

package games

import (
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
)

// 停損指標：hilo 以最近一局輸掉的注額計算。

var hiloEntry = Entry{
	Name:       "hilo",
	LossMetric: setting.LossLastRound,
	Params: map[string]string{
		"guess":      "higher | lower | auto (default auto)",
		"house_edge": "[0, 0.5) (default 0.01)",
	},
	Build: buildHilo,
}

const (
	cardMin   = 1 // A
	cardMax   = 13
	cardCount = cardMax - cardMin + 1
)

type hilo struct {
	guess string
	edge  float64
}

type HiloDetail struct {
	Card  int     `json:"card"`
	Next  int     `json:"next"`
	Guess string  `json:"guess"`
	Mult  float64 `json:"multiplier"`
}

func buildHilo(p Params) (Logic, error) {
	g, err := p.String("guess", "auto")
	if err != nil {
		return nil, err
	}
	if g != "higher" && g != "lower" && g != "auto" {
		return nil, errs.Invalidf("hilo guess must be higher, lower or auto, got %q", g)
	}
	edge, err := houseEdge(p)
	if err != nil {
		return nil, err
	}
	return &hilo{guess: g, edge: edge}, nil
}

// Play 翻一張牌後猜下一張嚴格較大或較小，同點算輸。
// 指定方向不可能成立時（A 猜 lower、K 猜 higher）改猜另一邊。
func (g *hilo) Play(c *core.Core) Result {
	card := cardMin + c.IntN(cardCount)
	up := cardMax - card
	down := card - cardMin

	guess := g.guess
	switch {
	case guess == "auto":
		guess = "higher"
		if down > up {
			guess = "lower"
		}
	case guess == "higher" && up == 0:
		guess = "lower"
	case guess == "lower" && down == 0:
		guess = "higher"
	}

	ways := up
	if guess == "lower" {
		ways = down
	}
	m := mult((1 - g.edge) * cardCount / float64(ways))

	next := cardMin + c.IntN(cardCount)
	won := (guess == "higher" && next > card) || (guess == "lower" && next < card)
	mf, _ := m.Float64()
	d := HiloDetail{Card: card, Next: next, Guess: guess, Mult: mf}
	if won {
		return Result{Won: true, Multiplier: m, Detail: d}
	}
	return Result{Detail: d}
}
