package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/logging"
	"github.com/ginjaninja78/text-info-extractor/internal/store"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
)

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T, maxBody int64) (http.Handler, *store.Sessions) {
	sessions := store.NewSessions(time.Hour)
	srv := New(extractor.New(extractor.FullLabels()), sessions, Options{
		MaxBodyBytes: maxBody,
		Export:       xlsxwriter.DefaultExportOptions(),
	}, logging.Discard())
	return srv.Routes(), sessions
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rr
}

func textBody(t *testing.T, text string) string {
	data, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)
	return string(data)
}

func TestExtractEndpoint(t *testing.T) {
	h, sessions := newTestServer(t, 0)
	c := &client{t: t, handler: h}

	rr := c.do(http.MethodPost, "/api/extract", textBody(t, "姓名：杜翠英\n价格：8999元"))
	require.Equal(t, http.StatusOK, rr.Code)

	var got types.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, types.Record{Name: "杜翠英", Price: "8999"}, got)
	assert.Equal(t, 0, sessions.Len())
}

func TestRecordsLifecycle(t *testing.T) {
	h, sessions := newTestServer(t, 0)
	c := &client{t: t, handler: h}

	rr := c.do(http.MethodPost, "/api/records", textBody(t, "姓名：甲"))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, c.cookie)

	rr = c.do(http.MethodPost, "/api/records", textBody(t, "姓名：乙\n手机号：13800000000"))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, sessions.Len())

	rr = c.do(http.MethodGet, "/api/records", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "乙", list.Records[1].Record.Name)
	assert.Equal(t, "13800000000", list.Records[1].Record.PhoneNumber)

	rr = c.do(http.MethodDelete, "/api/records/5", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodDelete, "/api/records/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do(http.MethodDelete, "/api/records/0", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodGet, "/api/records", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "乙", list.Records[0].Record.Name)

	rr = c.do(http.MethodDelete, "/api/records", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = c.do(http.MethodGet, "/api/records", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestSessionsAreIsolated(t *testing.T) {
	h, sessions := newTestServer(t, 0)
	alice := &client{t: t, handler: h}
	bob := &client{t: t, handler: h}

	alice.do(http.MethodPost, "/api/records", textBody(t, "姓名：Alice"))
	rr := bob.do(http.MethodGet, "/api/records", "")

	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
	assert.Equal(t, 2, sessions.Len())
}

func TestAppendRejectsBlankAndOversizedInput(t *testing.T) {
	h, _ := newTestServer(t, 64)
	c := &client{t: t, handler: h}

	rr := c.do(http.MethodPost, "/api/records", textBody(t, "  \n "))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do(http.MethodPost, "/api/records", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do(http.MethodPost, "/api/records", textBody(t, strings.Repeat("备注", 100)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = c.do(http.MethodGet, "/api/records", "")
	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestAppendRejectsValueLongerThanCell(t *testing.T) {
	h, _ := newTestServer(t, 0)
	c := &client{t: t, handler: h}

	rr := c.do(http.MethodPost, "/api/records", textBody(t, "姓名：甲\n"+strings.Repeat("a", 40000)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = c.do(http.MethodGet, "/api/records", "")
	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)

	rr = c.do(http.MethodGet, "/api/records/export", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExportEndpoint(t *testing.T) {
	h, _ := newTestServer(t, 0)
	c := &client{t: t, handler: h}
	c.do(http.MethodPost, "/api/records", textBody(t, "姓名：杜翠英\n身份证号码：412724196809296542"))

	rr := c.do(http.MethodGet, "/api/records/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("信息提取结果")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "412724196809296542", rows[1][1])
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, 0)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
