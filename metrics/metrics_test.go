package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })
	// 重复注册同一 registry 应 panic
	require.Panics(t, func() { RegisterCollectors(reg) })

	Saves.WithLabelValues(Result(nil)).Inc()
	Saves.WithLabelValues(Result(errors.New("x"))).Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(Saves.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(Saves.WithLabelValues("error")))
}
