package bot

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnReadChunk(t *testing.T) {
	client, server := net.Pipe()
	c := NewTCPConn(client, 50*time.Millisecond)
	defer c.Close()

	go func() {
		_, _ = server.Write([]byte("game|10|10|1\n"))
	}()
	chunk, err := c.ReadChunk()
	require.NoError(t, err)
	assert.Equal(t, "game|10|10|1\n", string(chunk))

	// nothing written: timeout is not an error
	chunk, err = c.ReadChunk()
	require.NoError(t, err)
	assert.Nil(t, chunk)

	require.NoError(t, server.Close())
	_, err = c.ReadChunk()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTCPConnWriteLine(t *testing.T) {
	client, server := net.Pipe()
	c := NewTCPConn(client, time.Second)
	defer c.Close()
	defer server.Close()

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		got <- string(buf[:n])
	}()
	require.NoError(t, c.WriteLine("move|up"))
	assert.Equal(t, "move|up\n", <-got)
}

type fakeResolver struct {
	records []*net.SRV
	err     error
	asked   *string
}

func (r fakeResolver) LookupSRV(_ context.Context, service, proto, name string) (string, []*net.SRV, error) {
	if r.asked != nil {
		*r.asked = "_" + service + "._" + proto + "." + name
	}
	return "", r.records, r.err
}

func TestResolveSRV(t *testing.T) {
	ctx := context.Background()
	var asked string
	addr := resolveSRV(ctx, fakeResolver{records: []*net.SRV{{Target: "game.example.com.", Port: 4001}}, asked: &asked}, "minecraft", "example.com")
	assert.Equal(t, "game.example.com:4001", addr)
	assert.Equal(t, "_minecraft._tcp.example.com", asked)

	addr = resolveSRV(ctx, fakeResolver{err: errors.New("no such host"), asked: &asked}, "tron", "example.com")
	assert.Equal(t, "example.com:4000", addr)
	assert.Equal(t, "_tron._tcp.example.com", asked)

	addr = resolveSRV(ctx, fakeResolver{}, "minecraft", "example.com")
	assert.Equal(t, "example.com:4000", addr)
}

// wsServer 发送 greeting，回传客户端写入的第一行，随后正常关闭
func wsServer(t *testing.T, greeting string, received chan<- string, hold <-chan struct{}) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		if hold != nil {
			<-hold
		}
		if err := ws.WriteMessage(websocket.TextMessage, []byte(greeting)); err != nil {
			return
		}
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		received <- string(payload)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		// 等待客户端回应关闭帧
		_, _, _ = ws.ReadMessage()
	}))
}

func TestWSConnRoundTrip(t *testing.T) {
	received := make(chan string, 1)
	srv := wsServer(t, "tick\n", received, nil)
	defer srv.Close()

	cfg := testConfig()
	cfg.Addr = "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	defer conn.Close()

	chunk, err := conn.ReadChunk()
	require.NoError(t, err)
	assert.Equal(t, "tick\n", string(chunk))

	require.NoError(t, conn.WriteLine("move|left"))
	assert.Equal(t, "move|left\n", <-received)

	_, err = conn.ReadChunk()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWSConnReadTimeout(t *testing.T) {
	hold := make(chan struct{})
	srv := wsServer(t, "tick\n", make(chan string, 1), hold)
	defer srv.Close()
	defer close(hold)

	conn, err := DialWS(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), 20*time.Millisecond)
	require.NoError(t, err)
	defer conn.Close()

	chunk, err := conn.ReadChunk()
	require.NoError(t, err)
	assert.Nil(t, chunk)
}

func TestDialTCPRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := testConfig()
	cfg.Addr = addr
	_, err = Dial(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSessionOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	lines := make(chan string, 4)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = c.Write([]byte("motd|read the documentation\n"))
		buf := make([]byte, 256)
		n, _ := c.Read(buf)
		lines <- string(buf[:n])
		_, _ = c.Write([]byte("game|8|8|3\nplayer|3|bot\npos|3|0|0\ntick\n"))
		n, _ = c.Read(buf)
		lines <- string(buf[:n])
	}()

	cfg := testConfig()
	cfg.Addr = ln.Addr().String()
	cfg.ReadTimeout = time.Second
	conn, err := Dial(context.Background(), cfg)
	require.NoError(t, err)

	engine, err := NewEngine("quadrant", NewChooser(1), 0)
	require.NoError(t, err)
	require.NoError(t, NewSession(conn, engine, nil, cfg).Run(context.Background()))

	assert.Equal(t, "join|bot|secret\n", <-lines)
	assert.Regexp(t, `^move\|(up|down|left|right)\n$`, <-lines)
}
