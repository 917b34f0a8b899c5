package bot

// AvoidAlgorithm 按洪泛可达格子数给四个方向打分，选择空间最大的方向
type AvoidAlgorithm struct {
	rng    Chooser
	budget int
}

func NewAvoidAlgorithm(rng Chooser, budget int) *AvoidAlgorithm {
	return &AvoidAlgorithm{rng: rng, budget: budget}
}

func (g *AvoidAlgorithm) Name() string { return "avoid" }

func (g *AvoidAlgorithm) SelectMove(a Arena) Direction {
	ev, ok := evaluate(a, g.budget)
	if !ok {
		return DirUp
	}
	best, dead := ev.best()
	if dead {
		return pick(g.rng, Directions[:])
	}
	if len(best) == 1 {
		return best[0]
	}
	return pick(g.rng, best)
}

// evaluation 一次决策中四个方向的折回后下一格与洪泛得分
type evaluation struct {
	width, height int
	occupied      map[Position]struct{}
	next          [4]Position
	scores        [4]int
}

// evaluate 对四个方向打分；我方头部未知时 ok 为 false
func evaluate(a Arena, budget int) (ev evaluation, ok bool) {
	head, ok := a.MyPosition()
	if !ok {
		return ev, false
	}
	ev.width, ev.height = a.MapSize()
	ev.occupied = a.OccupiedSquares()

	for i, d := range Directions {
		ev.next[i] = wrap(d.Step(head), ev.width, ev.height)
	}

	// 移动后当前头部也成为轨迹的一部分
	blocked := make(map[Position]struct{}, len(ev.occupied)+1)
	for pos := range ev.occupied {
		blocked[pos] = struct{}{}
	}
	blocked[head] = struct{}{}

	for i := range Directions {
		if _, taken := ev.occupied[ev.next[i]]; taken {
			ev.scores[i] = blockedScore
			continue
		}
		ev.scores[i] = countReachable(ev.next[i], blocked, ev.width, ev.height, budget)
	}
	return ev, true
}

// best 得分最高的方向集合；最高分为阻塞或 0 时 dead 为 true
func (ev *evaluation) best() (dirs []Direction, dead bool) {
	top := ev.scores[0]
	for _, s := range ev.scores[1:] {
		if s > top {
			top = s
		}
	}
	if top <= 0 {
		return nil, true
	}
	for i, s := range ev.scores {
		if s == top {
			dirs = append(dirs, Directions[i])
		}
	}
	return dirs, false
}

// countReachable 从 start 出发的广度优先洪泛，四方向环形折回，不重复访问
// 计数不超过 budget；start 本身被阻塞时为 0
func countReachable(start Position, blocked map[Position]struct{}, width, height, budget int) int {
	if _, ok := blocked[start]; ok {
		return 0
	}
	visited := map[Position]struct{}{start: {}}
	queue := []Position{start}
	count := 0
	for i := 0; i < len(queue) && count < budget; i++ {
		count++
		for _, d := range Directions {
			next := wrap(d.Step(queue[i]), width, height)
			if _, seen := visited[next]; seen {
				continue
			}
			if _, ok := blocked[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return count
}
