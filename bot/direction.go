package bot

// Direction 移动方向，取值即协议中的文本
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions 固定的四个方向，算法按此顺序评估
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Vector 方向对应的位移 (dx, dy)
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Step 未折回的下一格
func (d Direction) Step(pos Position) Position {
	dx, dy := d.Vector()
	return Position{X: pos.X + dx, Y: pos.Y + dy}
}

// ParseDirection 解析方向文本
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(s); d {
	case DirUp, DirDown, DirLeft, DirRight:
		return d, true
	default:
		return "", false
	}
}

// MoveCommand 出站移动指令（不含换行）
func MoveCommand(d Direction) string {
	return "move|" + string(d)
}
