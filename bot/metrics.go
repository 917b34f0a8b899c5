package bot

import (
	"sync/atomic"
)

// BotMetrics 记录客户端运行期的关键指标（用于监控与调试）
type BotMetrics struct {
	MessagesReceived  int64 // 解码得到的消息数
	DecodeFailures    int64 // 无法按文本解码的批次数
	ProtocolAnomalies int64 // 未知指令、字段数不符或引用未知玩家的消息数
	TickCount         int64 // 收到的 tick 次数
	MovesSent         int64 // 成功发出的移动指令数
	WriteFailures     int64 // 发送失败次数
	ServerNotices     int64 // motd、message、error 等提示消息数
	GamesStarted      int64
	Wins              int64
	Losses            int64
	TotalDecideNs     int64 // 决策累计耗时（纳秒）
}

func (m *BotMetrics) IncMessages(n int) { atomic.AddInt64(&m.MessagesReceived, int64(n)) }
func (m *BotMetrics) IncDecodeFailures() { atomic.AddInt64(&m.DecodeFailures, 1) }
func (m *BotMetrics) IncProtocolAnomalies() { atomic.AddInt64(&m.ProtocolAnomalies, 1) }
func (m *BotMetrics) IncMovesSent() { atomic.AddInt64(&m.MovesSent, 1) }
func (m *BotMetrics) IncWriteFailures() { atomic.AddInt64(&m.WriteFailures, 1) }
func (m *BotMetrics) IncServerNotices() { atomic.AddInt64(&m.ServerNotices, 1) }
func (m *BotMetrics) IncGamesStarted() { atomic.AddInt64(&m.GamesStarted, 1) }
func (m *BotMetrics) IncWins() { atomic.AddInt64(&m.Wins, 1) }
func (m *BotMetrics) IncLosses() { atomic.AddInt64(&m.Losses, 1) }
func (m *BotMetrics) AddDecision(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalDecideNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *BotMetrics) Snapshot() map[string]any {
	ticks := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalDecideNs)
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"messages_received":  atomic.LoadInt64(&m.MessagesReceived),
		"decode_failures":    atomic.LoadInt64(&m.DecodeFailures),
		"protocol_anomalies": atomic.LoadInt64(&m.ProtocolAnomalies),
		"tick_count":         ticks,
		"moves_sent":         atomic.LoadInt64(&m.MovesSent),
		"write_failures":     atomic.LoadInt64(&m.WriteFailures),
		"server_notices":     atomic.LoadInt64(&m.ServerNotices),
		"games_started":      atomic.LoadInt64(&m.GamesStarted),
		"wins":               atomic.LoadInt64(&m.Wins),
		"losses":             atomic.LoadInt64(&m.Losses),
		"avg_decide_ms":      avgMs,
	}
}
