package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnexpectedGreeting 服务端欢迎语不符合预期或迟迟未到
var ErrUnexpectedGreeting = errors.New("bot: unexpected server greeting")

// greetingAttempts 等待欢迎语的最多读取次数（每次受 ReadTimeout 约束）
const greetingAttempts = 3

// Conn 会话所需的连接能力
// ReadChunk 在超时无数据时返回 (nil, nil)，对端关闭时返回 io.EOF
type Conn interface {
	ReadChunk() ([]byte, error)
	LineWriter
	Close() error
}

// Session 一次连接上的单线程轮询循环：读取 → 解码 → 按序分发 → 无数据时短暂休眠
type Session struct {
	ID string

	conn       Conn
	cfg        Config
	decoder    Decoder
	state      *GameState
	dispatcher *Dispatcher
	metrics    *BotMetrics
	log        *zap.SugaredLogger
}

// NewSession 创建会话；metrics 可为 nil
func NewSession(conn Conn, engine *Engine, metrics *BotMetrics, cfg Config) *Session {
	if metrics == nil {
		metrics = &BotMetrics{}
	}
	id := uuid.NewString()
	log := Log.With("session", id)
	state := NewGameState()
	return &Session{
		ID:         id,
		conn:       conn,
		cfg:        cfg,
		state:      state,
		dispatcher: NewDispatcher(state, engine, conn, metrics, log),
		metrics:    metrics,
		log:        log,
	}
}

// State 会话的竞技场状态（仅供同一线程读取）
func (s *Session) State() *GameState { return s.state }

// Run 完成握手后进入轮询循环，直到 gameover、对端关闭或 ctx 取消
// 对端关闭与 gameover 均为正常结束，返回 nil
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()
	s.log.Infof("session started as %s", s.cfg.Username)

	done, err := s.handshake(ctx)
	if err != nil || done {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := s.conn.ReadChunk()
		if errors.Is(err, io.EOF) {
			s.decoder.Close()
			s.log.Info("connection closed by server")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if len(chunk) == 0 {
			if err := s.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		done, err := s.process(chunk)
		if err != nil {
			return err
		}
		if done {
			s.log.Info("session finished")
			return nil
		}
	}
}

// handshake 等待欢迎语，随后发送 join|username|password
func (s *Session) handshake(ctx context.Context) (bool, error) {
	for attempt := 0; attempt < greetingAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		chunk, err := s.conn.ReadChunk()
		if errors.Is(err, io.EOF) {
			// 与轮询阶段一致：对端关闭是正常结束
			s.log.Info("connection closed by server before greeting")
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("handshake: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}
		if s.cfg.GreetingMarker != "" && !bytes.Contains(chunk, []byte(s.cfg.GreetingMarker)) {
			return false, fmt.Errorf("%w: %q", ErrUnexpectedGreeting, chunk)
		}
		// 欢迎语中的完整消息（如 motd）照常分发
		done, err := s.process(chunk)
		if err != nil || done {
			return done, err
		}
		s.log.Infof("logging in as %s", s.cfg.Username)
		if err := s.conn.WriteLine(fmt.Sprintf("join|%s|%s", s.cfg.Username, s.cfg.Password)); err != nil {
			return false, fmt.Errorf("send join: %w", err)
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: none received", ErrUnexpectedGreeting)
}

// process 解码一次读取的数据并按到达顺序分发
func (s *Session) process(chunk []byte) (bool, error) {
	msgs, err := s.decoder.Feed(chunk)
	if err != nil {
		s.metrics.IncDecodeFailures()
		s.log.Warnf("decode failed: %v", err)
		return false, nil
	}
	s.metrics.IncMessages(len(msgs))
	for _, msg := range msgs {
		done, err := s.dispatcher.Dispatch(msg)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) sleep(ctx context.Context) error {
	if s.cfg.PollInterval <= 0 {
		return nil
	}
	t := time.NewTimer(s.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
