package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/cmd/curvebuild/internal/build"
)

func TestBuildFromFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "--input", filepath.Join("testdata", "usd.json")}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())

	var out build.Output
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "USD-SOFR", out.Name)
	assert.Equal(t, "2025-01-02", out.ReferenceDate)
	assert.Equal(t, "iterative", out.Method)
	require.Len(t, out.Pillars, 9)
	assert.Equal(t, 1.0, out.Pillars[0].Discount)
	require.Len(t, out.QuoteErrors, 8)
	for i, e := range out.QuoteErrors {
		assert.InDelta(t, 0, e, 1e-10, "instrument %d", i)
	}
	for i := 1; i < len(out.Pillars); i++ {
		assert.Less(t, out.Pillars[i].Discount, out.Pillars[i-1].Discount)
		assert.Greater(t, out.Pillars[i].ZeroRate, 3.5)
		assert.Less(t, out.Pillars[i].ZeroRate, 4.5)
	}
}

func TestBuildFromStdinWithMetrics(t *testing.T) {
	in := `{"reference_date":"2025-01-02","kind":"zero","interpolation":"linear","method":"local","instruments":[
		{"type":"deposit","quote":3.0,"tenor":"3M"},
		{"type":"swap","quote":3.2,"tenor":"1Y"},
		{"type":"swap","quote":3.4,"tenor":"2Y"}]}`
	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "--metrics"}, strings.NewReader(in), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())
	assert.Contains(t, stdout.String(), `"method":"local"`)
	assert.Contains(t, stderr.String(), "curvekit_bootstrap_total")
}

func TestBuildReportsErrors(t *testing.T) {
	in := `{"reference_date":"2025-01-02","instruments":[
		{"type":"deposit","quote":3.0,"start":"2025-01-02","maturity":"2025-04-02"},
		{"type":"deposit","quote":3.1,"start":"2025-02-03","maturity":"2025-04-02"}]}`
	var stdout, stderr bytes.Buffer
	code := run([]string{"build"}, strings.NewReader(in), &stdout, &stderr)
	assert.Equal(t, 1, code)

	var out build.Output
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	assert.Contains(t, out.Error, "same maturity")
	assert.Equal(t, "configuration", out.ErrorClass)

	stdout.Reset()
	code = run([]string{"build"}, strings.NewReader("{not json"), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "failed to parse JSON input")
}

func TestUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"version"}, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "dev\n", stdout.String())

	assert.Equal(t, 2, run([]string{"price"}, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown command")
	assert.Equal(t, 2, run([]string{"build", "--bogus"}, strings.NewReader(""), &stdout, &stderr))
}

func TestASW(t *testing.T) {
	in := `{"curve":{"reference_date":"2025-01-02","instruments":[
		{"type":"deposit","quote":3.0,"tenor":"6M"},
		{"type":"swap","quote":3.1,"tenor":"2Y"},
		{"type":"swap","quote":3.2,"tenor":"5Y"}]},
		"float_leg":{"frequency_months":6},
		"bonds":[{"isin":"XS0000000001","issue":"2023-05-10","maturity":"2028-05-10","coupon":3.0,"clean_price":98.5}]}`
	var stdout, stderr bytes.Buffer
	code := run([]string{"asw"}, strings.NewReader(in), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())

	var out build.ASWOutput
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Bonds, 1)
	assert.Equal(t, "XS0000000001", out.Bonds[0].ISIN)
	assert.Greater(t, out.Bonds[0].ASWSpreadBP, 0.0)

	stdout.Reset()
	assert.Equal(t, 1, run([]string{"asw"}, strings.NewReader(`{"curve":{"reference_date":"x"}}`), &stdout, &stderr))
	assert.Contains(t, stdout.String(), "reference_date")
}
