package bot

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LineWriter 出站文本指令的发送端（一次一行，不含换行）
type LineWriter interface {
	WriteLine(line string) error
}

// Dispatcher 解析每条协议消息并路由：修改竞技场状态，或在 tick 时决策并发出移动指令
type Dispatcher struct {
	state   *GameState
	engine  *Engine
	out     LineWriter
	metrics *BotMetrics
	log     *zap.SugaredLogger
}

// NewDispatcher 创建分发器；metrics 与 log 可为 nil
func NewDispatcher(state *GameState, engine *Engine, out LineWriter, metrics *BotMetrics, log *zap.SugaredLogger) *Dispatcher {
	if metrics == nil {
		metrics = &BotMetrics{}
	}
	if log == nil {
		log = Log
	}
	return &Dispatcher{state: state, engine: engine, out: out, metrics: metrics, log: log}
}

// Dispatch 处理一条消息；done 表示对局结束（gameover），err 仅在发送移动指令失败时返回
// 未知指令、字段数不符、数值非法一律忽略，不中断会话
func (d *Dispatcher) Dispatch(msg string) (done bool, err error) {
	msg = strings.TrimSuffix(msg, "\r")
	if msg == "" {
		return false, nil
	}
	d.log.Debugf(">> %s", msg)
	parts := strings.Split(msg, "|")

	switch parts[0] {
	case "game":
		d.handleGame(parts)
	case "limit":
		d.handleLimit(parts)
	case "player":
		d.handlePlayer(parts)
	case "pos":
		d.handlePosition(parts)
	case "die":
		d.handleDeath(parts)
	case "tick":
		return false, d.handleTick()
	case "gameover":
		d.log.Info("game over")
		d.state.Reset()
		return true, nil
	case "win", "lose":
		d.handleResult(parts)
	case "motd", "message":
		d.metrics.IncServerNotices()
		d.log.Infof("server %s: %s", parts[0], strings.Join(parts[1:], "|"))
	case "error":
		d.metrics.IncServerNotices()
		d.log.Warnf("server error: %s", strings.Join(parts[1:], "|"))
	default:
		d.anomaly("unknown command", msg)
	}
	return false, nil
}

// game|width|height|myId
func (d *Dispatcher) handleGame(parts []string) {
	vals, ok := d.ints(parts, 1, 3)
	if !ok || vals[0] <= 0 || vals[1] <= 0 {
		d.anomaly("malformed game", parts)
		return
	}
	d.state.StartSession(vals[0], vals[1], PlayerID(vals[2]))
	d.metrics.IncGamesStarted()
	d.log.Infof("game started: map=%dx%d me=%d", vals[0], vals[1], vals[2])
}

// limit|_|_|x2|y2：服务端给出含边界的坐标，转换为宽高需要各加一
func (d *Dispatcher) handleLimit(parts []string) {
	vals, ok := d.ints(parts, 3, 2)
	// 加一后必须仍为正数
	if !ok || vals[0] < 0 || vals[1] < 0 || vals[0] == math.MaxInt || vals[1] == math.MaxInt {
		d.anomaly("malformed limit", parts)
		return
	}
	d.state.ResizeArena(vals[0]+1, vals[1]+1)
}

// player|id|username
func (d *Dispatcher) handlePlayer(parts []string) {
	vals, ok := d.ints(parts, 1, 1)
	if !ok || len(parts) < 3 {
		d.anomaly("malformed player", parts)
		return
	}
	d.state.AddPlayer(PlayerID(vals[0]), parts[2])
}

// pos|id|x|y
func (d *Dispatcher) handlePosition(parts []string) {
	vals, ok := d.ints(parts, 1, 3)
	if !ok {
		d.anomaly("malformed pos", parts)
		return
	}
	if !d.state.RecordPosition(PlayerID(vals[0]), vals[1], vals[2]) {
		d.anomaly("pos for unknown player", parts)
	}
}

// die|id
func (d *Dispatcher) handleDeath(parts []string) {
	vals, ok := d.ints(parts, 1, 1)
	if !ok {
		d.anomaly("malformed die", parts)
		return
	}
	if !d.state.RemovePlayer(PlayerID(vals[0])) {
		d.anomaly("die for unknown player", parts)
	}
}

// win|wins|losses 或 lose|wins|losses
func (d *Dispatcher) handleResult(parts []string) {
	if parts[0] == "win" {
		d.metrics.IncWins()
	} else {
		d.metrics.IncLosses()
	}
	d.log.Infof("round result: %s %s", parts[0], strings.Join(parts[1:], "|"))
}

// handleTick 仅在 tick 时决策，每个 tick 恰好发出一条移动指令
func (d *Dispatcher) handleTick() error {
	start := time.Now()
	dir := d.engine.SelectMove(d.state)
	d.metrics.AddDecision(time.Since(start).Nanoseconds())

	if err := d.out.WriteLine(MoveCommand(dir)); err != nil {
		d.metrics.IncWriteFailures()
		d.log.Warnf("send move failed: %v", err)
		return err
	}
	d.metrics.IncMovesSent()

	w, h := d.state.MapSize()
	if pos, ok := d.state.MyPosition(); ok {
		d.log.Debugf("map=%dx%d pos=(%d,%d) -> %s", w, h, pos.X, pos.Y, dir)
	} else {
		d.log.Debugf("map=%dx%d pos=? -> %s", w, h, dir)
	}
	return nil
}

// ints 从 parts[from] 起解析 n 个整数
func (d *Dispatcher) ints(parts []string, from, n int) ([]int, bool) {
	if len(parts) < from+n {
		return nil, false
	}
	vals := make([]int, n)
	for i := range vals {
		v, err := strconv.Atoi(strings.TrimSpace(parts[from+i]))
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func (d *Dispatcher) anomaly(reason string, msg any) {
	d.metrics.IncProtocolAnomalies()
	d.log.Debugw("ignored message", "reason", reason, "msg", msg)
}
