package bot

// RandomAlgorithm 在可进入的方向中均匀随机；无路可走时四个方向任选其一
type RandomAlgorithm struct {
	rng Chooser
}

func NewRandomAlgorithm(rng Chooser) *RandomAlgorithm {
	return &RandomAlgorithm{rng: rng}
}

func (r *RandomAlgorithm) Name() string { return "random" }

func (r *RandomAlgorithm) SelectMove(a Arena) Direction {
	if valid := validMoves(a); len(valid) > 0 {
		return pick(r.rng, valid)
	}
	return pick(r.rng, Directions[:])
}

// validMoves 下一格（由 IsValid 折回判断）未被占据的方向；头部未知时视为全部可走
func validMoves(a Arena) []Direction {
	head, ok := a.MyPosition()
	if !ok {
		return Directions[:]
	}
	valid := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		next := d.Step(head)
		if a.IsValid(next.X, next.Y) {
			valid = append(valid, d)
		}
	}
	return valid
}
