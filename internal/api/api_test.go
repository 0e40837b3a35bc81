package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/services"
	"github.com/wardroom/messbook/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)
	j, err := ledger.OpenJournal(filepath.Join(dir, "intents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	svc := services.NewCollectionService(st, ledger.NewCoordinator(st, j, zerolog.Nop()))
	srv := httptest.NewServer(NewRouter(svc, st, j))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createRecord(t *testing.T, srv *httptest.Server, collection string, fields map[string]interface{}) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/collections", map[string]interface{}{
		"collection": collection,
		"fields":     fields,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCollectionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	id := createRecord(t, srv, "messMembers", map[string]interface{}{
		"name": "Lt Sharma",
		"rank": "Lt",
	})

	// List
	resp, err := http.Get(srv.URL + "/api/collections?collection=messMembers")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	rec := data[0].(map[string]interface{})
	assert.Equal(t, "Lt Sharma", rec["name"])
	assert.Equal(t, id, rec["id"])
	assert.NotEmpty(t, rec["timestamp"])

	// Update
	b, _ := json.Marshal(map[string]interface{}{
		"collection": "messMembers",
		"id":         id,
		"fields":     map[string]interface{}{"rank": "Capt"},
	})
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/collections", bytes.NewReader(b))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/collections?collection=messMembers&rank=Capt")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	require.Len(t, body["data"].([]interface{}), 1)

	// Delete
	req, err = http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/collections?collection=messMembers&id=%s", srv.URL, id), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/collections?collection=messMembers")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Empty(t, body["data"])
}

func TestLedgerInsertOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	createRecord(t, srv, "stockItems", map[string]interface{}{
		"itemName":        "Rice",
		"currentQuantity": 10,
		"lastUnitCost":    20,
		"totalCost":       200,
	})

	resp := postJSON(t, srv.URL+"/api/collections", map[string]interface{}{
		"collection": "snacksAtBarEntries",
		"fields": map[string]interface{}{
			"date":           "2026-08-01",
			"itemName":       "Rice",
			"quantity":       4,
			"sharingMembers": []string{"m1", "m2"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	rec := body["record"].(map[string]interface{})
	assert.Equal(t, float64(80), rec["totalItemCost"])
	assert.Equal(t, float64(40), rec["costPerMember"])

	// Stock reflects the deduction.
	resp, err := http.Get(srv.URL + "/api/collections?collection=stockItems&itemName=Rice")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	stock := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(6), stock["currentQuantity"])
	assert.Equal(t, float64(120), stock["totalCost"])
}

func TestInsufficientStockMapsTo400(t *testing.T) {
	srv := newTestServer(t)

	createRecord(t, srv, "stockItems", map[string]interface{}{
		"itemName":        "Rice",
		"currentQuantity": 2,
		"lastUnitCost":    20,
		"totalCost":       40,
	})

	resp := postJSON(t, srv.URL+"/api/collections", map[string]interface{}{
		"collection": "snacksAtBarEntries",
		"fields":     map[string]interface{}{"itemName": "Rice", "quantity": 5},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "InsufficientStock", errBody["kind"])
	assert.Contains(t, errBody["message"], "Rice")
}

func TestUnknownRecordMapsTo404(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete,
		srv.URL+"/api/collections?collection=messMembers&id=nope", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "RecordNotFound", body["error"].(map[string]interface{})["kind"])
}

func TestInvalidCollectionNameRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/collections?collection=../etc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/collections", map[string]interface{}{
		"collection": "bad/name",
		"fields":     map[string]interface{}{"a": 1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestListEmptyCollectionReturnsEmptyData(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/collections?collection=neverWritten")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Empty(t, body["data"])
}

func TestIntentsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/intents")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["count"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
}
