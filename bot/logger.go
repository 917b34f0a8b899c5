package bot

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；未初始化时为空实现
var Log = zap.NewNop().Sugar()

// InitLogger 文件记录每条入站消息与每步决策（JSON，便于事后按 session 过滤复盘），
// console 为真时另将 Info 以上以可读格式输出到标准错误
func InitLogger(filePath string, console bool) error {
	// 每个 tick 至少两行 Debug 日志，文件滚动更频繁并压缩旧文件
	rotate := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    5, // MB
		MaxBackups: 5,
		MaxAge:     3, // days
		Compress:   true,
	}

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotate), zapcore.DebugLevel),
	}

	if console {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		consoleCfg.CallerKey = "" // 终端上只看消息
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), zapcore.InfoLevel))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar()
	return nil
}

// SyncLogger 退出前刷新缓冲
func SyncLogger() {
	_ = Log.Sync()
}
