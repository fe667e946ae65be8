package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetrics_ObserveDispatch_CountsByResult 测试按调用和结果计数
func TestMetrics_ObserveDispatch_CountsByResult(t *testing.T) {
	m := New()
	m.ObserveDispatch("asset.issue", "ok", time.Millisecond)
	m.ObserveDispatch("asset.issue", "ok", time.Millisecond)
	m.ObserveDispatch("asset.issue", "failed", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.dispatchTotal.WithLabelValues("asset.issue", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dispatchTotal.WithLabelValues("asset.issue", "failed")))
}

// TestMetrics_Handler_ExposesRegistry 测试 /metrics 输出包含自定义指标
func TestMetrics_Handler_ExposesRegistry(t *testing.T) {
	m := New()
	m.SetBlockHeight(42)
	m.IncEvent("settlement", "InstructionExecuted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pmengine_runtime_block_height 42")
	assert.Contains(t, rec.Body.String(), `pmengine_runtime_events_total{module="settlement",name="InstructionExecuted"} 1`)
}

// TestNewNop_DoesNotPanic 测试空记录器可安全调用
func TestNewNop_DoesNotPanic(t *testing.T) {
	r := NewNop()
	assert.NotPanics(t, func() {
		r.ObserveDispatch("x", "ok", 0)
		r.SetBlockHeight(1)
		r.IncEvent("a", "b")
		r.ObserveHTTP("GET", "/", 200, 0)
	})
}
