package bot

// QuadrantAlgorithm 与 AvoidAlgorithm 打分相同；洪泛得分并列时
// 倾向全图空格更多的象限，弥补洪泛上限之外的盲区
type QuadrantAlgorithm struct {
	rng    Chooser
	budget int
}

func NewQuadrantAlgorithm(rng Chooser, budget int) *QuadrantAlgorithm {
	return &QuadrantAlgorithm{rng: rng, budget: budget}
}

func (q *QuadrantAlgorithm) Name() string { return "quadrant" }

func (q *QuadrantAlgorithm) SelectMove(a Arena) Direction {
	ev, ok := evaluate(a, q.budget)
	if !ok {
		return DirUp
	}
	best, dead := ev.best()
	if dead {
		return pick(q.rng, Directions[:])
	}
	if len(best) == 1 {
		return best[0]
	}
	return pick(q.rng, q.tiebreak(&ev, best))
}

// tiebreak 保留目标格所在象限空格数最多的方向
func (q *QuadrantAlgorithm) tiebreak(ev *evaluation, tied []Direction) []Direction {
	empty := countQuadrantEmpty(ev.occupied, ev.width, ev.height)

	var out []Direction
	top := -1
	for _, d := range tied {
		score := empty[quadrantOf(ev.next[directionIndex(d)], ev.width, ev.height)]
		switch {
		case score > top:
			top = score
			out = append(out[:0], d)
		case score == top:
			out = append(out, d)
		}
	}
	return out
}

// quadrantOf 象限编号：0 左上，1 右上，2 左下，3 右下（以 width/2、height/2 为界）
func quadrantOf(pos Position, width, height int) int {
	midX, midY := width/2, height/2
	q := 0
	if pos.X >= midX {
		q++
	}
	if pos.Y >= midY {
		q += 2
	}
	return q
}

// countQuadrantEmpty 统计全图每个象限中未被占据的格子数
// 象限面积由中线直接算出，再减去落在图内的占据格，开销只与轨迹长度有关
func countQuadrantEmpty(occupied map[Position]struct{}, width, height int) [4]int {
	if width <= 0 || height <= 0 {
		return [4]int{}
	}
	midX, midY := width/2, height/2
	counts := [4]int{
		midX * midY,
		(width - midX) * midY,
		midX * (height - midY),
		(width - midX) * (height - midY),
	}
	for pos := range occupied {
		if pos.X < 0 || pos.X >= width || pos.Y < 0 || pos.Y >= height {
			continue
		}
		counts[quadrantOf(pos, width, height)]--
	}
	return counts
}

func directionIndex(d Direction) int {
	for i, dd := range Directions {
		if dd == d {
			return i
		}
	}
	return -1
}
