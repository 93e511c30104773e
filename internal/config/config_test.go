package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.ShouldContinueOnError())
	assert.Equal(t, "信息提取结果", cfg.Export.SheetName)
	assert.Equal(t, float64(20), cfg.Export.ColumnWidth)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)

	labels, err := cfg.LabelSet()
	require.NoError(t, err)
	assert.Equal(t, extractor.FullLabels().PhoneNumber, labels.PhoneNumber)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: /data/in
max_concurrency: 2
continue_on_error: false
log_level: debug
export:
  column_width: 30
labels:
  profile: strict
  phone_number: ["联系电话：", "手机号："]
server:
  session_ttl: 5m
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.False(t, cfg.ShouldContinueOnError())
	assert.Equal(t, float64(30), cfg.Export.ColumnWidth)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)

	labels, err := cfg.LabelSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"联系电话：", "手机号："}, labels.PhoneNumber)
	assert.Equal(t, []string{"身份证号码："}, labels.IDNumber)
	assert.Empty(t, labels.PriceFallback)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"log level":   "log_level: loud",
		"profile":     "labels:\n  profile: fuzzy",
		"blank label": "labels:\n  name: [\"  \"]",
		"width":       "export:\n  column_width: 300",
		"sheet name":  "export:\n  sheet_name: 这是一个非常非常非常非常非常非常非常非常非常非常非常长的工作表名称",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("input_dir: [unclosed"))
	assert.Error(t, err)
}

func TestLabelSet_DisablePriceFallback(t *testing.T) {
	cfg, err := Parse([]byte("labels:\n  price_fallback: []\n"))
	require.NoError(t, err)
	labels, err := cfg.LabelSet()
	require.NoError(t, err)
	assert.Equal(t, extractor.FullLabels().PriceFallback, labels.PriceFallback)

	cfg, err = Parse([]byte("labels:\n  disable_price_fallback: true\n"))
	require.NoError(t, err)
	ex, err := cfg.Extractor()
	require.NoError(t, err)
	assert.Empty(t, ex.Labels().PriceFallback)
	assert.Equal(t, "", ex.Extract("初始价格：5000").Price)
}

func TestValidator_FromConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
validation:
  required_fields: [phone_number, 价格]
  treat_warnings_as_errors: true
`))
	require.NoError(t, err)

	v, err := cfg.Validator()
	require.NoError(t, err)
	problems := v.ValidateRecord(types.Record{Name: "甲"}, "a.txt")
	require.Len(t, problems, 2)
	for _, p := range problems {
		assert.Equal(t, "required", p.Rule)
		assert.True(t, p.IsFatal())
	}
	assert.Equal(t, types.FieldPhoneNumber, problems[0].Field)
	assert.Equal(t, types.FieldPrice, problems[1].Field)

	_, err = Parse([]byte("validation:\n  required_fields: [email]\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
