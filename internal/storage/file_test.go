package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// --- Test helpers ---

// newTestFileStore creates a FileStore with a temp directory and 3 versions.
func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return newTestFileStoreVersions(t, 3)
}

// newTestFileStoreVersions creates a FileStore with a custom version count.
func newTestFileStoreVersions(t *testing.T, versions int) *FileStore {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewLogger("error")
	fs, err := NewFileStore(logger, &common.StorageConfig{Path: dir, Versions: versions})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return fs
}

type testData struct {
	Value int `json:"value"`
}

func countPrefix(t *testing.T, dir, prefix string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			count++
		}
	}
	return count
}

// --- FileStore internals ---

func TestFileStore_CreatesSubdirectories(t *testing.T) {
	fs := newTestFileStore(t)
	for _, sub := range subdirectories {
		info, err := os.Stat(filepath.Join(fs.basePath, sub))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", sub, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", sub)
		}
	}
}

func TestFileStore_SanitizeKey(t *testing.T) {
	fs := newTestFileStore(t)
	tests := []struct {
		input, expected string
	}{
		{"NVDA", "NVDA"},
		{"NWG.L", "NWG.L"},
		{"a/b", "a_b"},
		{"a\\b", "a_b"},
		{"a:b", "a_b"},
		{"../etc/passwd", "__etc_passwd"},
	}
	for _, tt := range tests {
		if got := fs.sanitizeKey(tt.input); got != tt.expected {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFileStore_WriteAndReadJSON(t *testing.T) {
	fs := newTestFileStore(t)
	dir := fs.reportsDir()

	if err := fs.writeJSON(dir, "sample", &testData{Value: 42}, false); err != nil {
		t.Fatalf("writeJSON failed: %v", err)
	}

	var got testData
	if err := fs.readJSON(dir, "sample", &got); err != nil {
		t.Fatalf("readJSON failed: %v", err)
	}
	if got.Value != 42 {
		t.Errorf("expected 42, got %d", got.Value)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "sample.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"value\": 42") {
		t.Errorf("expected indented JSON, got %s", raw)
	}
}

func TestFileStore_AtomicWrite_NoTempFileLeftBehind(t *testing.T) {
	fs := newTestFileStore(t)
	dir := fs.reportsDir()
	for i := 0; i < 5; i++ {
		if err := fs.writeJSON(dir, "atomic", &testData{Value: i}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
	}
	if n := countPrefix(t, dir, ".tmp-"); n != 0 {
		t.Errorf("expected no temp files, found %d", n)
	}
}

func TestFileStore_ReadJSON_Errors(t *testing.T) {
	fs := newTestFileStore(t)
	dir := fs.reportsDir()

	var got testData
	err := fs.readJSON(dir, "missing", &got)
	if err == nil || !strings.Contains(err.Error(), "'missing' not found") {
		t.Errorf("expected not found error, got %v", err)
	}

	os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0644)
	if err := fs.readJSON(dir, "empty", &got); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Errorf("expected empty error, got %v", err)
	}

	os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{not json"), 0644)
	if err := fs.readJSON(dir, "corrupt", &got); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestFileStore_Versioning_RetentionLimit(t *testing.T) {
	fs := newTestFileStoreVersions(t, 3)
	dir := fs.reportsDir()

	for i := 0; i < 6; i++ {
		if err := fs.writeJSON(dir, "versioned", &testData{Value: i}, true); err != nil {
			t.Fatalf("writeJSON #%d failed: %v", i, err)
		}
	}

	// current + v1..v3
	if n := countPrefix(t, dir, "versioned.json"); n != 4 {
		t.Errorf("expected 4 files (current + 3 versions), got %d", n)
	}

	var current testData
	fs.readJSON(dir, "versioned", &current)
	if current.Value != 5 {
		t.Errorf("expected current value 5, got %d", current.Value)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "versioned.json.v1"))
	if err != nil {
		t.Fatalf("expected v1: %v", err)
	}
	var v1 testData
	json.Unmarshal(raw, &v1)
	if v1.Value != 4 {
		t.Errorf("expected v1 value 4, got %d", v1.Value)
	}
}

func TestFileStore_Versioning_ZeroDisablesVersioning(t *testing.T) {
	fs := newTestFileStoreVersions(t, 0)
	dir := fs.reportsDir()
	for i := 0; i < 5; i++ {
		if err := fs.writeJSON(dir, "no-versions", &testData{Value: i}, true); err != nil {
			t.Fatalf("writeJSON #%d failed: %v", i, err)
		}
	}
	if n := countPrefix(t, dir, "no-versions"); n != 1 {
		t.Errorf("expected 1 file (no versioning), got %d", n)
	}
}

func TestFileStore_ListKeys_ExcludesVersionAndTempFiles(t *testing.T) {
	fs := newTestFileStore(t)
	dir := fs.fundamentalsDir()

	fs.writeJSON(dir, "NVDA", &testData{Value: 1}, true)
	fs.writeJSON(dir, "NVDA", &testData{Value: 2}, true)
	fs.writeJSON(dir, "MSFT", &testData{Value: 3}, false)
	os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0644)

	keys, err := fs.listKeys(dir)
	if err != nil {
		t.Fatalf("listKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %v", keys)
	}

	keys, err = fs.listKeys(filepath.Join(dir, "does-not-exist"))
	if err != nil || keys != nil {
		t.Errorf("expected nil keys for missing dir, got %v (%v)", keys, err)
	}
}

func TestFileStore_WriteRawAndReadRaw(t *testing.T) {
	fs := newTestFileStore(t)
	data := []byte{0x89, 'P', 'N', 'G'}

	path, err := fs.WriteRaw(ChartsDir, "holdings_pie.png", data)
	if err != nil {
		t.Fatalf("WriteRaw failed: %v", err)
	}
	if path != filepath.Join(fs.basePath, ChartsDir, "holdings_pie.png") {
		t.Errorf("unexpected path %s", path)
	}

	got, err := fs.ReadRaw(ChartsDir, "holdings_pie.png")
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("ReadRaw returned %v, want %v", got, data)
	}

	if _, err := fs.ReadRaw(ChartsDir, "missing.png"); err == nil {
		t.Error("expected error for missing raw file")
	}

	// new subdirectories are created on demand
	if _, err := fs.WriteRaw("exports", "a/b.bin", data); err != nil {
		t.Fatalf("WriteRaw to new subdir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fs.basePath, "exports", "a_b.bin")); err != nil {
		t.Errorf("expected sanitized file: %v", err)
	}
}

func TestFileStore_ConcurrentWrites(t *testing.T) {
	fs := newTestFileStore(t)
	dir := fs.reportsDir()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if err := fs.writeJSON(dir, "concurrent", &testData{Value: v}, false); err != nil {
				t.Errorf("writeJSON failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var got testData
	if err := fs.readJSON(dir, "concurrent", &got); err != nil {
		t.Fatalf("readJSON after concurrent writes failed: %v", err)
	}
	if got.Value < 0 || got.Value >= 20 {
		t.Errorf("unexpected value %d", got.Value)
	}
}

// --- Snapshots ---

func TestSnapshots_DailyReport(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	if _, err := fs.GetDailyReport(ctx); err == nil {
		t.Fatal("expected error before any report is saved")
	}

	report := &models.DailyReport{
		Timestamp:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		PortfolioValue: 12500.5,
		Holdings: []models.HoldingAnalysis{
			{
				Ticker:     "NVDA",
				Company:    "NVIDIA",
				Signal:     models.OutlookBullish,
				Signals:    []models.Signal{models.SignalMACDBullish, models.SignalBullishTrend},
				Indicators: models.IndicatorSet{Price: 500, RSI: models.Float(58.12)},
			},
		},
	}
	report.Summary.Add(models.OutlookBullish)

	if err := fs.SaveDailyReport(ctx, report); err != nil {
		t.Fatalf("SaveDailyReport failed: %v", err)
	}

	got, err := fs.GetDailyReport(ctx)
	if err != nil {
		t.Fatalf("GetDailyReport failed: %v", err)
	}
	if len(got.Holdings) != 1 || got.Holdings[0].Ticker != "NVDA" {
		t.Errorf("unexpected holdings %+v", got.Holdings)
	}
	if got.Holdings[0].Indicators.RSIOrNeutral() != 58.12 {
		t.Errorf("expected rsi 58.12, got %v", got.Holdings[0].Indicators.RSIOrNeutral())
	}
	if got.Summary.Bullish != 1 || got.PortfolioValue != 12500.5 {
		t.Errorf("unexpected summary %+v / value %v", got.Summary, got.PortfolioValue)
	}
}

func TestSnapshots_Fundamentals(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	reports := []*models.FundamentalReport{
		{Ticker: "nvda", Status: models.FundamentalStatusSuccess, Data: &models.FundamentalRecord{EPS: models.Float(2.1)}},
		{Ticker: "MSFT", Status: models.FundamentalStatusSECFallback},
	}
	for _, r := range reports {
		if err := fs.SaveFundamentals(ctx, r); err != nil {
			t.Fatalf("SaveFundamentals failed: %v", err)
		}
	}

	keys, err := fs.ListFundamentals(ctx)
	if err != nil {
		t.Fatalf("ListFundamentals failed: %v", err)
	}
	if strings.Join(keys, ",") != "MSFT,NVDA" {
		t.Errorf("unexpected keys %v", keys)
	}

	got, err := fs.GetFundamentals(ctx, "NVDA")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}
	if got.Data == nil || models.ValueOf(got.Data.EPS) != 2.1 {
		t.Errorf("unexpected data %+v", got.Data)
	}
	if got.Data.RevenueBillions != nil {
		t.Error("absent metric should stay absent after round trip")
	}

	if err := fs.SaveFundamentals(ctx, &models.FundamentalReport{}); err == nil {
		t.Error("expected error for report without ticker")
	}
}

func TestSnapshots_SynthesisSplitAndRun(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	if err := fs.SaveSynthesis(ctx, &models.PortfolioSynthesis{TotalHoldings: 3}); err != nil {
		t.Fatalf("SaveSynthesis failed: %v", err)
	}
	syn, err := fs.GetSynthesis(ctx)
	if err != nil || syn.TotalHoldings != 3 {
		t.Errorf("GetSynthesis = %+v, %v", syn, err)
	}

	if err := fs.SavePortfolioSplit(ctx, &models.PortfolioSplit{TotalValue: 100, Cash: 5}); err != nil {
		t.Fatalf("SavePortfolioSplit failed: %v", err)
	}
	split, err := fs.GetPortfolioSplit(ctx)
	if err != nil || split.Cash != 5 {
		t.Errorf("GetPortfolioSplit = %+v, %v", split, err)
	}

	run := &models.RunResult{
		ID:    "run-1",
		Steps: map[string]models.StepResult{"technical": {Status: models.StepStatusSuccess, HoldingsCount: 4}},
	}
	if err := fs.SaveRunResult(ctx, run); err != nil {
		t.Fatalf("SaveRunResult failed: %v", err)
	}
	gotRun, err := fs.GetRunResult(ctx)
	if err != nil {
		t.Fatalf("GetRunResult failed: %v", err)
	}
	if gotRun.Steps["technical"].HoldingsCount != 4 {
		t.Errorf("unexpected run %+v", gotRun)
	}

	if _, err := os.Stat(filepath.Join(fs.reportsDir(), KeyFullAnalysis+".json")); err != nil {
		t.Errorf("expected %s.json: %v", KeyFullAnalysis, err)
	}
}
