package bot

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readStep struct {
	data string
	err  error
}

// scriptedConn 依次返回预设的读取结果，脚本耗尽后视为对端关闭
type scriptedConn struct {
	reads  []readStep
	writes []string
	closed bool
}

func (c *scriptedConn) ReadChunk() ([]byte, error) {
	if len(c.reads) == 0 {
		return nil, io.EOF
	}
	step := c.reads[0]
	c.reads = c.reads[1:]
	if step.data == "" {
		return nil, step.err
	}
	return []byte(step.data), step.err
}

func (c *scriptedConn) WriteLine(line string) error {
	c.writes = append(c.writes, line)
	return nil
}

func (c *scriptedConn) Close() error {
	c.closed = true
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Username = "bot"
	cfg.Password = "secret"
	cfg.PollInterval = 0
	return cfg
}

func newTestSession(t *testing.T, conn Conn) (*Session, *BotMetrics) {
	t.Helper()
	engine, err := NewEngine("avoid", NewChooser(1), 0)
	require.NoError(t, err)
	metrics := &BotMetrics{}
	return NewSession(conn, engine, metrics, testConfig()), metrics
}

func TestSessionPlaysUntilPeerCloses(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{
		{},
		{data: "motd|see the documentation\n"},
		{data: "game|10|10|1\nplayer|1|bot\npos|1|5|5\nti"},
		{},
		{data: "ck\n"},
		{data: "pos|1|5|4\ntick\nunfinished"},
	}}
	s, metrics := newTestSession(t, conn)

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, conn.closed)
	require.Len(t, conn.writes, 3)
	assert.Equal(t, "join|bot|secret", conn.writes[0])
	assert.Regexp(t, `^move\|(up|down|left|right)$`, conn.writes[1])
	assert.Regexp(t, `^move\|(up|down|left|right)$`, conn.writes[2])
	assert.NotEqual(t, "move|down", conn.writes[2], "cannot reverse into its own trail")

	snap := metrics.Snapshot()
	assert.EqualValues(t, 7, snap["messages_received"])
	assert.EqualValues(t, 2, snap["tick_count"])
	assert.NotEmpty(t, s.ID)
}

func TestSessionStopsOnGameOver(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{
		{data: "documentation\n"},
		{data: "game|10|10|1\ngameover\ntick\n"},
		{data: "tick\n"},
	}}
	s, _ := newTestSession(t, conn)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"join|bot|secret"}, conn.writes)
	assert.Len(t, conn.reads, 1, "loop ends without reading further")
}

func TestSessionRejectsUnexpectedGreeting(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{{data: "HTTP/1.1 400 Bad Request\r\n"}}}
	s, _ := newTestSession(t, conn)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedGreeting)
	assert.Empty(t, conn.writes)
	assert.True(t, conn.closed)
}

func TestSessionGivesUpWithoutGreeting(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{{}, {}, {}, {data: "documentation\n"}}}
	s, _ := newTestSession(t, conn)

	assert.ErrorIs(t, s.Run(context.Background()), ErrUnexpectedGreeting)
}

func TestSessionClosedBeforeGreeting(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{{}}}
	s, _ := newTestSession(t, conn)
	assert.NoError(t, s.Run(context.Background()))
	assert.Empty(t, conn.writes)
	assert.True(t, conn.closed)
}

func TestSessionHandshakeReadError(t *testing.T) {
	boom := errors.New("connection reset")
	s, _ := newTestSession(t, &scriptedConn{reads: []readStep{{err: boom}}})
	assert.ErrorIs(t, s.Run(context.Background()), boom)
}

func TestSessionSurvivesDecodeFailure(t *testing.T) {
	conn := &scriptedConn{reads: []readStep{
		{data: "documentation\n"},
		{data: "game|10|10|1\xff\n"},
		{data: "game|10|10|1\nplayer|1|bot\npos|1|1|1\ntick\n"},
	}}
	s, metrics := newTestSession(t, conn)

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, conn.writes, 2)
	assert.EqualValues(t, 1, metrics.Snapshot()["decode_failures"])
}

func TestSessionReadError(t *testing.T) {
	boom := errors.New("connection reset")
	conn := &scriptedConn{reads: []readStep{
		{data: "documentation\n"},
		{err: boom},
	}}
	s, _ := newTestSession(t, conn)
	assert.ErrorIs(t, s.Run(context.Background()), boom)
}

func TestSessionContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newTestSession(t, &scriptedConn{reads: []readStep{{data: "documentation\n"}}})
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}
