package prometheus

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mmapbuf"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := New(reg)

	c.RecordSplice(5, time.Microsecond, nil)
	c.RecordSplice(-2, time.Microsecond, nil)
	c.RecordSplice(3, time.Microsecond, errors.New("boom"))
	c.RecordRemap(10, 4106, time.Millisecond, nil)
	c.RecordRemap(4106, 12, time.Millisecond, nil)
	c.RecordFlush(time.Millisecond, nil)
	c.RecordLock(0, false, nil)
	c.RecordLock(20*time.Millisecond, true, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.splices.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.splices.WithLabelValues("error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.bytesInserted))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.bytesRemoved))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.remaps.WithLabelValues("grow", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.remaps.WithLabelValues("shrink", "success")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.capacity))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flushes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.locks.WithLabelValues("free")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.locks.WithLabelValues("contended")))

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCollector_WiredIntoBuffer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	path := filepath.Join(t.TempDir(), "data.bin")
	buf, err := mmapbuf.Open(path, mmapbuf.WithMode(mmapbuf.ModeAppend), mmapbuf.WithMetricsCollector(c))
	require.NoError(t, err)

	require.NoError(t, buf.Append([]byte("hello")))
	require.NoError(t, buf.Flush(mmapbuf.SyncSync))
	require.NoError(t, buf.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.splices.WithLabelValues("success")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.bytesInserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flushes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.remaps.WithLabelValues("shrink", "success")))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
