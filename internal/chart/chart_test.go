package chart

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/example/market-stats/pkg/summary"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func nameTotals() []summary.NameTotal {
	return []summary.NameTotal{
		{Name: "Sword", Bucket: summary.Bucket{Total: decimal.NewFromInt(12), Count: 2}},
		{Name: "Case", Bucket: summary.Bucket{Total: decimal.RequireFromString("0.3"), Count: 1}},
	}
}

func monthTotals() []summary.MonthTotal {
	return []summary.MonthTotal{
		{Month: summary.Month{Year: 2024, Month: time.January}, Bucket: summary.Bucket{Total: decimal.NewFromInt(10), Count: 1}},
		{Month: summary.Month{Year: 2024, Month: time.February}, Bucket: summary.Bucket{Total: decimal.NewFromInt(17), Count: 2}},
	}
}

func renderer() *Renderer {
	return New(Options{Width: 800, Height: 400, Currency: "USD"})
}

func TestRenderer_ByName(t *testing.T) {
	var buf bytes.Buffer
	err := renderer().ByName(&buf, decimal.RequireFromString("12.3"), nameTotals())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_ByMonth(t *testing.T) {
	var buf bytes.Buffer
	err := renderer().ByMonth(&buf, monthTotals())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_SingleEntry(t *testing.T) {
	var buf bytes.Buffer
	err := renderer().ByMonth(&buf, monthTotals()[:1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_SingleName(t *testing.T) {
	var buf bytes.Buffer
	err := renderer().ByName(&buf, decimal.NewFromInt(12), nameTotals()[:1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_BuildPadsXAxis(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		var d dataset
		for i := 0; i < n; i++ {
			d.add(strconv.Itoa(i), decimal.NewFromInt(int64(i+1)), 1)
		}

		ticks := renderer().build("title", "Item Name", d).XAxis.Ticks
		require.Len(t, ticks, n+2)

		first, last := ticks[0], ticks[len(ticks)-1]
		assert.Equal(t, -0.5, first.Value)
		assert.Equal(t, float64(n)-0.5, last.Value)
		assert.Empty(t, first.Label)
		assert.Empty(t, last.Label)
		for _, tick := range ticks {
			assert.GreaterOrEqual(t, tick.Value, first.Value)
			assert.LessOrEqual(t, tick.Value, last.Value)
		}
	}
}

func TestRenderer_SaveNoDataCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	r := renderer()

	byName := filepath.Join(dir, "by_name.png")
	byMonth := filepath.Join(dir, "by_month.png")
	assert.ErrorIs(t, r.SaveByName(byName, decimal.Zero, nil), ErrNoData)
	assert.ErrorIs(t, r.SaveByMonth(byMonth, nil), ErrNoData)

	for _, path := range []string{byName, byMonth} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), path)
	}
}

func TestSaveFile_RemovesFileOnRenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")

	err := saveFile(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render broken.png")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderer_NoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, renderer().ByName(&buf, decimal.Zero, nil), ErrNoData)
	assert.ErrorIs(t, renderer().ByMonth(&buf, nil), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestRenderer_SaveFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	r := renderer()

	byName := filepath.Join(dir, "by_name.png")
	byMonth := filepath.Join(dir, "by_month.png")
	require.NoError(t, r.SaveByName(byName, decimal.RequireFromString("12.3"), nameTotals()))
	require.NoError(t, r.SaveByMonth(byMonth, monthTotals()))

	for _, path := range []string{byName, byMonth} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), path)
	}
}

func TestRenderer_Build(t *testing.T) {
	var d dataset
	for _, mt := range monthTotals() {
		d.add(mt.Month.String(), mt.Total, mt.Count)
	}

	c := renderer().build("title", "Month", d)
	require.Len(t, c.XAxis.Ticks, 4)
	assert.Equal(t, "2024-Jan", c.XAxis.Ticks[1].Label)
	assert.Equal(t, "2024-Feb", c.XAxis.Ticks[2].Label)
	assert.Equal(t, "Total Price (USD)", c.YAxis.Name)

	require.Len(t, c.Series, 2)
	bars := c.Series[0].(gochart.ContinuousSeries)
	assert.Len(t, bars.XValues, 8)
	assert.Equal(t, []float64{0, 10, 10, 0, 0, 17, 17, 0}, bars.YValues)

	counts := c.Series[1].(gochart.ContinuousSeries)
	assert.Equal(t, gochart.YAxisSecondary, counts.YAxis)
	assert.Equal(t, []float64{1, 2}, counts.YValues)
}

func TestAxisMax(t *testing.T) {
	assert.Equal(t, 1.0, axisMax([]float64{0, 0}, 1.1))
	assert.InDelta(t, 22.0, axisMax([]float64{5, 20}, 1.1), 1e-9)
}
