package bot

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("bot: invalid config")

// DefaultPort 未指定端口或 SRV 查询失败时使用的游戏端口
const DefaultPort = 4000

// Config 客户端运行配置，由 main 中的命令行参数填充
type Config struct {
	Addr     string // host:port 或 ws:// / wss:// 地址
	Domain   string // 非空时先做 SRV 查询，失败回退到 Domain:DefaultPort
	Username string
	Password string

	// SRVService SRV 记录的服务名，即 _<SRVService>._tcp.<Domain>
	SRVService string

	Algorithm   string
	FloodBudget int
	Seed        int64 // 0 表示使用当前时间

	ReadTimeout    time.Duration // 单次读取的等待上限
	PollInterval   time.Duration // 无数据时的休眠间隔
	GreetingMarker string        // 服务端欢迎语中必须包含的文本，空表示不校验

	LogFile     string
	LogConsole  bool
	MetricsAddr string // 空表示不启动监控接口
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Addr:           fmt.Sprintf("localhost:%d", DefaultPort),
		SRVService:     "minecraft",
		Algorithm:      "avoid",
		FloodBudget:    DefaultFloodBudget,
		ReadTimeout:    5 * time.Second,
		PollInterval:   10 * time.Millisecond,
		GreetingMarker: "documentation",
		LogFile:        "bot.log",
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.Addr == "" && c.Domain == "" {
		return fmt.Errorf("%w: addr or domain required", ErrInvalidConfig)
	}
	if c.Domain != "" && c.SRVService == "" {
		return fmt.Errorf("%w: srv service required with domain", ErrInvalidConfig)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: username required", ErrInvalidConfig)
	}
	if _, ok := algorithms[c.Algorithm]; !ok {
		return fmt.Errorf("%w: algorithm %q (want one of %v)", ErrInvalidConfig, c.Algorithm, AlgorithmNames())
	}
	if c.FloodBudget <= 0 {
		return fmt.Errorf("%w: flood budget must be positive", ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 || c.PollInterval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}
