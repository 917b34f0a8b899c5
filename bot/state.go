package bot

// GameState 竞技场的权威快照：环形网格尺寸、所有玩家及其轨迹、我方编号
// 仅由 Dispatcher 写入，算法只做只读查询；两者在同一个轮询循环中运行，无需加锁
type GameState struct {
	width  int
	height int

	players map[PlayerID]*Player

	myID    PlayerID
	hasMyID bool
}

// NewGameState 创建空的竞技场状态
func NewGameState() *GameState {
	return &GameState{players: make(map[PlayerID]*Player)}
}

// StartSession 开局：设置地图尺寸与我方编号
func (s *GameState) StartSession(width, height int, myID PlayerID) {
	s.width, s.height = width, height
	s.myID = myID
	s.hasMyID = true
}

// ResizeArena 仅更新地图尺寸（服务端上报的实际可玩区域）
func (s *GameState) ResizeArena(width, height int) {
	s.width, s.height = width, height
}

// AddPlayer 注册玩家；编号已存在时以新玩家覆盖
func (s *GameState) AddPlayer(id PlayerID, username string) {
	s.players[id] = NewPlayer(id, username)
}

// RecordPosition 追加玩家轨迹并更新头部；未知玩家直接忽略
func (s *GameState) RecordPosition(id PlayerID, x, y int) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.addPosition(s.Wrap(Position{X: x, Y: y}))
	return true
}

// RemovePlayer 玩家死亡：编号与轨迹一并遗忘；未知玩家直接忽略
func (s *GameState) RemovePlayer(id PlayerID) bool {
	if _, ok := s.players[id]; !ok {
		return false
	}
	delete(s.players, id)
	return true
}

// Reset 对局结束，清空全部状态
func (s *GameState) Reset() {
	*s = GameState{players: make(map[PlayerID]*Player)}
}

// MapSize 返回地图宽高
func (s *GameState) MapSize() (width, height int) {
	return s.width, s.height
}

// MyPlayer 返回我方玩家，未开局或尚未注册时为 nil
func (s *GameState) MyPlayer() *Player {
	if !s.hasMyID {
		return nil
	}
	return s.players[s.myID]
}

// MyPosition 我方头部位置
func (s *GameState) MyPosition() (Position, bool) {
	if me := s.MyPlayer(); me != nil {
		return me.Head()
	}
	return Position{}, false
}

// Player 按编号查询玩家
func (s *GameState) Player(id PlayerID) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// Players 返回全部玩家（顺序无意义）
func (s *GameState) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// Opponents 除我方以外的所有玩家
func (s *GameState) Opponents() []*Player {
	out := make([]*Player, 0, len(s.players))
	for id, p := range s.players {
		if s.hasMyID && id == s.myID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OccupiedSquares 所有玩家轨迹的并集
func (s *GameState) OccupiedSquares() map[Position]struct{} {
	n := 0
	for _, p := range s.players {
		n += len(p.Trail)
	}
	occupied := make(map[Position]struct{}, n)
	for _, p := range s.players {
		for pos := range p.Trail {
			occupied[pos] = struct{}{}
		}
	}
	return occupied
}

// Wrap 将坐标折回 [0,width)×[0,height)；尺寸未初始化时原样返回
func (s *GameState) Wrap(pos Position) Position {
	return wrap(pos, s.width, s.height)
}

// IsValid 折回后的格子未被任何轨迹占据即可进入
func (s *GameState) IsValid(x, y int) bool {
	pos := s.Wrap(Position{X: x, Y: y})
	for _, p := range s.players {
		if p.Occupies(pos) {
			return false
		}
	}
	return true
}

func wrap(pos Position, width, height int) Position {
	if width <= 0 || height <= 0 {
		return pos
	}
	return Position{X: mod(pos.X, width), Y: mod(pos.Y, height)}
}

// mod 取非负余数，负坐标同样折回
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
