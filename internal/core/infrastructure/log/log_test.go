package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logconfig "github.com/polymesh/engine/internal/config/log"
	"github.com/polymesh/engine/pkg/types"
)

func newBufferCore(buf *bytes.Buffer) zapcore.Core {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "message", LevelKey: "level"})
	return zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel)
}

// TestModuleRoutingCore_RoutesByModuleField 测试按 module 字段分流
func TestModuleRoutingCore_RoutesByModuleField(t *testing.T) {
	var sysBuf, bizBuf bytes.Buffer
	core := &moduleRoutingCore{systemCore: newBufferCore(&sysBuf), businessCore: newBufferCore(&bizBuf)}
	entry := zapcore.Entry{Message: "hello", Level: zapcore.InfoLevel}

	// 系统模块只写系统日志
	require.NoError(t, core.Write(entry, []zapcore.Field{zap.String("module", "storage")}))
	assert.NotZero(t, sysBuf.Len())
	assert.Zero(t, bizBuf.Len())
	sysBuf.Reset()

	// 业务模块只写业务日志
	require.NoError(t, core.Write(entry, []zapcore.Field{zap.String("module", "settlement")}))
	assert.Zero(t, sysBuf.Len())
	assert.NotZero(t, bizBuf.Len())
	bizBuf.Reset()

	// 缺少 module 字段两边都写
	require.NoError(t, core.Write(entry, nil))
	assert.NotZero(t, sysBuf.Len())
	assert.NotZero(t, bizBuf.Len())
}

// TestModuleRoutingCore_WithRemembersModule 测试 With 派生后模块标识保留
func TestModuleRoutingCore_WithRemembersModule(t *testing.T) {
	var sysBuf, bizBuf bytes.Buffer
	core := &moduleRoutingCore{systemCore: newBufferCore(&sysBuf), businessCore: newBufferCore(&bizBuf)}

	logger := FromZap(zap.New(core)).With("module", "compliance")
	logger.Info("规则评估")

	assert.Zero(t, sysBuf.Len())
	assert.Contains(t, bizBuf.String(), "规则评估")
}

// TestNew_FileOutput 测试写入日志文件
func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	cfg := logconfig.New(&types.UserLogConfig{FilePath: types.StringPtr(path), Level: types.StringPtr("debug")})

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.With("module", "asset", "ticker", "ACME").Debug("资产已创建")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(raw))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "资产已创建", entry["message"])
	assert.Equal(t, "ACME", entry["ticker"])
	assert.Equal(t, "debug", entry["level"])
}

// TestNewModuleLogger_NilBase 测试空基础记录器返回可用的空操作记录器
func TestNewModuleLogger_NilBase(t *testing.T) {
	logger := NewModuleLogger(nil, "sto")
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Infof("募资 %d", 1) })
}
