package bot

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn 通过 WebSocket 承载同一行协议：每个文本帧作为一次读取交给解码器
type WSConn struct {
	ws          *websocket.Conn
	readTimeout time.Duration

	frames chan []byte
	closed chan struct{}
	err    error // readPump 退出原因，frames 关闭后可读

	closeOnce sync.Once
}

// NewWSConn 包装已建立的连接并启动读协程
func NewWSConn(ws *websocket.Conn, readTimeout time.Duration) *WSConn {
	c := &WSConn{
		ws:          ws,
		readTimeout: readTimeout,
		frames:      make(chan []byte, 64),
		closed:      make(chan struct{}),
	}
	go c.readPump()
	return c
}

// DialWS 连接 ws:// 或 wss:// 地址
func DialWS(ctx context.Context, url string, readTimeout time.Duration) (*WSConn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	Log.Infof("connected to %s", url)
	return NewWSConn(ws, readTimeout), nil
}

// readPump 独立协程，gorilla 的读超时会破坏连接状态，因此超时放在 ReadChunk 中处理
func (c *WSConn) readPump() {
	defer close(c.frames)
	c.ws.SetReadLimit(1 << 20) // 1MB
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.err = err
			return
		}
		select {
		case c.frames <- payload:
		case <-c.closed:
			return
		}
	}
}

// ReadChunk 等待一帧；超时无数据返回 (nil, nil)，对端关闭返回 io.EOF
func (c *WSConn) ReadChunk() ([]byte, error) {
	var timeout <-chan time.Time
	if c.readTimeout > 0 {
		t := time.NewTimer(c.readTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case payload, ok := <-c.frames:
		if !ok {
			return nil, c.closeErr()
		}
		return payload, nil
	case <-timeout:
		return nil, nil
	}
}

func (c *WSConn) closeErr() error {
	err := c.err
	if err == nil ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}

// WriteLine 以文本帧发送一行指令（自动追加换行）
func (c *WSConn) WriteLine(line string) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line+"\n"))
}

// Close 关闭底层连接并结束读协程
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// Dial 按地址协议选择传输：ws:// 与 wss:// 走 WebSocket，其余走 TCP
func Dial(ctx context.Context, cfg Config) (Conn, error) {
	if strings.HasPrefix(cfg.Addr, "ws://") || strings.HasPrefix(cfg.Addr, "wss://") {
		c, err := DialWS(ctx, cfg.Addr, cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := DialTCP(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
