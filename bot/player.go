package bot

// PlayerID 服务端分配的玩家编号，单局内唯一
type PlayerID int

// Position 网格坐标（左上角为原点，y 向下增长）
type Position struct {
	X int
	Y int
}

// Player 场上的一名玩家：轨迹只增不减，死亡时整体移除
type Player struct {
	ID       PlayerID
	Username string

	// Trail 玩家存活期间占据过的所有格子（包含当前头部）
	Trail map[Position]struct{}

	head    Position
	hasHead bool
}

// NewPlayer 创建尚未上报位置的玩家
func NewPlayer(id PlayerID, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Trail:    make(map[Position]struct{}),
	}
}

// Head 返回当前头部位置；首次上报位置之前 ok 为 false
func (p *Player) Head() (pos Position, ok bool) {
	return p.head, p.hasHead
}

// Occupies 该格子是否在玩家轨迹中
func (p *Player) Occupies(pos Position) bool {
	_, ok := p.Trail[pos]
	return ok
}

func (p *Player) addPosition(pos Position) {
	p.Trail[pos] = struct{}{}
	p.head = pos
	p.hasHead = true
}
