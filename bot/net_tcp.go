package bot

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	readBufferSize = 4096
	writeTimeout   = 5 * time.Second
)

// TCPConn 基于读超时的行协议连接
type TCPConn struct {
	conn        net.Conn
	readTimeout time.Duration
	buf         []byte
}

func NewTCPConn(conn net.Conn, readTimeout time.Duration) *TCPConn {
	return &TCPConn{conn: conn, readTimeout: readTimeout, buf: make([]byte, readBufferSize)}
}

// ReadChunk 读取一次；超时无数据返回 (nil, nil)，对端关闭返回 io.EOF
func (c *TCPConn) ReadChunk() ([]byte, error) {
	if c.readTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		// 先交付数据，错误留给下一次读取
		out := make([]byte, n)
		copy(out, c.buf[:n])
		return out, nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return nil, nil
	}
	return nil, err
}

// WriteLine 发送一行指令（自动追加换行）
func (c *TCPConn) WriteLine(line string) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *TCPConn) Close() error { return c.conn.Close() }

// DialTCP 建立 TCP 连接；cfg.Domain 非空时先解析 SRV 记录
func DialTCP(ctx context.Context, cfg Config) (*TCPConn, error) {
	addr := cfg.Addr
	if cfg.Domain != "" {
		addr = resolveSRV(ctx, net.DefaultResolver, cfg.SRVService, cfg.Domain)
	}
	d := net.Dialer{Timeout: cfg.ReadTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	Log.Infof("connected to %s", addr)
	return NewTCPConn(conn, cfg.ReadTimeout), nil
}

// srvResolver 便于测试替换 net.Resolver
type srvResolver interface {
	LookupSRV(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
}

// resolveSRV 查询 _<service>._tcp.<domain>；失败时回退到 domain:DefaultPort
func resolveSRV(ctx context.Context, r srvResolver, service, domain string) string {
	_, records, err := r.LookupSRV(ctx, service, "tcp", domain)
	if err != nil || len(records) == 0 {
		Log.Warnf("srv lookup for %s failed, falling back to port %d: %v", domain, DefaultPort, err)
		return net.JoinHostPort(domain, strconv.Itoa(DefaultPort))
	}
	target := strings.TrimSuffix(records[0].Target, ".")
	return net.JoinHostPort(target, strconv.Itoa(int(records[0].Port)))
}
