// PCG64 的 PCG 演算法由 Melissa O'Neill 設計，實作取自 math/rand/v2。

package core

import (
	"math/rand/v2"
)

// PCG64 以 math/rand/v2 的 PCG 為來源；取樣交給 rand.Rand（無偏的有界整數），
// 狀態保存/還原直接使用 PCG 的二進位格式。
type PCG64 struct {
	src *rand.PCG
	r   *rand.Rand
}

// newPCG64WithSeed 以 splitmix64 把 int64 seed 展開成 PCG 的兩個 64-bit 狀態
func newPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	src := rand.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))
	return &PCG64{src: src, r: rand.New(src)}
}

func (p *PCG64) Uint64() uint64   { return p.src.Uint64() }
func (p *PCG64) Float64() float64 { return p.r.Float64() }

// UintN max == 0 回傳 0
func (p *PCG64) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return p.r.UintN(max)
}

// IntN max <= 0 回傳 -1
func (p *PCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return p.r.IntN(max)
}

func (p *PCG64) Snapshot() ([]byte, error) { return p.src.MarshalBinary() }
func (p *PCG64) Restore(data []byte) error { return p.src.UnmarshalBinary(data) }

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
