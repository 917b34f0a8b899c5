package bot

import "sync/atomic"

// Engine 持有当前生效的算法；管理接口可在运行中切换，轮询循环每个 tick 读取一次
type Engine struct {
	current atomic.Value // algorithmRef
	rng     Chooser
	budget  int
}

type algorithmRef struct{ Algorithm }

// NewEngine 以指定算法名创建引擎
func NewEngine(name string, rng Chooser, budget int) (*Engine, error) {
	if rng == nil {
		rng = NewChooser(0)
	}
	if budget <= 0 {
		budget = DefaultFloodBudget
	}
	e := &Engine{rng: rng, budget: budget}
	if err := e.Use(name); err != nil {
		return nil, err
	}
	return e, nil
}

// Use 切换到指定算法，后续 tick 生效
func (e *Engine) Use(name string) error {
	alg, err := NewAlgorithm(name, e.rng, e.budget)
	if err != nil {
		return err
	}
	e.current.Store(algorithmRef{alg})
	return nil
}

// Algorithm 当前算法
func (e *Engine) Algorithm() Algorithm {
	return e.current.Load().(algorithmRef).Algorithm
}

// Budget 洪泛上限
func (e *Engine) Budget() int { return e.budget }

// SelectMove 用当前算法对快照做一次决策
func (e *Engine) SelectMove(a Arena) Direction {
	return e.Algorithm().SelectMove(a)
}
