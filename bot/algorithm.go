package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// DefaultFloodBudget 洪泛搜索的格子上限，保证每回合开销与地图大小无关
const DefaultFloodBudget = 100

// blockedScore 下一格已被占据时的分数，劣于任何可达格子数
const blockedScore = -1

// ErrUnknownAlgorithm 未注册的算法名
var ErrUnknownAlgorithm = errors.New("bot: unknown algorithm")

// Arena 算法可见的只读竞技场视图
type Arena interface {
	MapSize() (width, height int)
	MyPosition() (Position, bool)
	OccupiedSquares() map[Position]struct{}
	IsValid(x, y int) bool
}

// Chooser 均匀随机选择能力；*rand.Rand 直接满足，测试可替换为确定性实现
type Chooser interface {
	Intn(n int) int
}

// Algorithm 走法选择算法：每次调用只依赖当前快照，不保留任何历史
type Algorithm interface {
	Name() string
	SelectMove(a Arena) Direction
}

type algorithmFactory func(rng Chooser, budget int) Algorithm

var algorithms = map[string]algorithmFactory{
	"random": func(rng Chooser, _ int) Algorithm { return NewRandomAlgorithm(rng) },
	"avoid": func(rng Chooser, budget int) Algorithm {
		return NewAvoidAlgorithm(rng, budget)
	},
	"quadrant": func(rng Chooser, budget int) Algorithm {
		return NewQuadrantAlgorithm(rng, budget)
	},
}

// AlgorithmNames 已注册算法名（排序后）
func AlgorithmNames() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewAlgorithm 按名称构造算法；budget<=0 时使用 DefaultFloodBudget
func NewAlgorithm(name string, rng Chooser, budget int) (Algorithm, error) {
	factory, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	if rng == nil {
		rng = NewChooser(0)
	}
	if budget <= 0 {
		budget = DefaultFloodBudget
	}
	return factory(rng, budget), nil
}

// NewChooser 基于种子的随机源；seed 为 0 时由调用方负责传入时间种子
func NewChooser(seed int64) Chooser {
	return rand.New(rand.NewSource(seed))
}

func pick(rng Chooser, dirs []Direction) Direction {
	return dirs[rng.Intn(len(dirs))]
}
