package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/config"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/forecast"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/metrics"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/store"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/output"
)

// openFromConfig wires a store the same way main does, with the answers
// file redirected into a temp dir.
func openFromConfig(t *testing.T, path string) (*store.Store, *config.Configuration) {
	t.Helper()

	conf, err := config.LoadConfiguration("../../config.yaml.example")
	require.NoError(t, err)
	conf.Store.Backend = constants.StoreBackendFile
	conf.Store.Path = path

	logger := zaptest.NewLogger(t)
	persister, closeFn, err := buildPersister(context.Background(), conf.Store)
	require.NoError(t, err)
	t.Cleanup(closeFn)

	s := store.Open(context.Background(), logger,
		store.WithPersister(persister),
		store.WithMetrics(metrics.NewRecorder()),
		store.WithDebounce(conf.Recalc.Debounce, conf.Recalc.HeavyDebounce),
		store.WithPersistTimeout(conf.Recalc.PersistTimeout),
		store.WithReconciler(forecast.NewReconciler(logger, forecast.WithMaxPasses(conf.Recalc.MaxPasses))),
	)
	return s, conf
}

func TestEndToEndExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	s, conf := openFromConfig(t, path)
	require.NoError(t, s.Flush(context.Background()))

	report := output.BuildReport(zaptest.NewLogger(t), s.Answers(), conf.ThresholdOverrides())
	assert.True(t, report.IsExampleData)
	assert.Equal(t, 400000.0, report.Results.GrossFees)
	assert.Equal(t, 12000.0, report.Results.Discounts)
	assert.Equal(t, 388000.0, report.Results.TaxPrepIncome)
	assert.InDelta(t, report.Results.TotalRevenue-report.Results.TotalExpenses, report.Results.NetIncome, 0.01)

	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, constants.OutputFormatJSON, report))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	results := decoded["results"].(map[string]any)
	assert.Equal(t, 400000.0, results["grossFees"])

	// A second run picks up the reconciled state from disk.
	_, err := os.Stat(path)
	require.NoError(t, err)
	reopened, _ := openFromConfig(t, path)
	a := reopened.Answers()
	require.NotNil(t, a.GrossFees)
	assert.Equal(t, 400000.0, *a.GrossFees)
	assert.True(t, a.IsExampleData)
}

func TestEndToEndCanadaTaxRush(t *testing.T) {
	dir := t.TempDir()
	patchFile := filepath.Join(dir, "patch.json")
	require.NoError(t, os.WriteFile(patchFile, []byte(`{
		"region": "CA",
		"storeType": "new",
		"handlesTaxRush": true,
		"avgNetFee": 200,
		"taxPrepReturns": 1000,
		"taxRushReturns": 200,
		"taxRushReturnsManual": true
	}`), 0o600))

	s, conf := openFromConfig(t, filepath.Join(dir, "answers.json"))
	patch, err := readPatch(patchFile)
	require.NoError(t, err)
	require.NoError(t, s.UpdateAnswers(patch))
	require.NoError(t, s.Flush(context.Background()))

	a := s.Answers()
	assert.False(t, a.IsExampleData)
	assert.Equal(t, domain.RegionCA, a.Region)
	require.NotNil(t, a.TaxRushReturnsPct)
	assert.Equal(t, 20.0, *a.TaxRushReturnsPct)

	report := output.BuildReport(zaptest.NewLogger(t), a, conf.ThresholdOverrides())
	assert.Equal(t, 40000.0, report.Results.TaxRushIncome)
	assert.Equal(t, 1200.0, report.Results.TotalReturns)

	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, constants.OutputFormatCSV, report))
	assert.True(t, strings.HasPrefix(buf.String(), `"section"`), buf.String())
}
