package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskFetchesDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "Point", "coordinates": [1, 2]}`))
	}))
	defer server.Close()

	task := Task{URL: server.URL + "/parks.geojson", LayerName: "parks", CRS: "EPSG:4326"}

	result, err := task.Perform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "parks", result.Name)
	assert.Equal(t, "EPSG:4326", result.CRS)
	assert.JSONEq(t, `{"type": "Point", "coordinates": [1, 2]}`, string(result.Bytes))
}

func TestTaskNameDefaultsToURLBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	task := Task{URL: server.URL + "/rivers.geojson", CRS: "EPSG:4326"}

	result, err := task.Perform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rivers.geojson", result.Name)
}

func TestTaskFailsOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	task := Task{URL: server.URL, CRS: "EPSG:4326"}

	_, err := task.Perform(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 404")
}

func TestTaskFailsOnUnreachableHost(t *testing.T) {
	task := Task{URL: "http://127.0.0.1:1/unreachable", CRS: "EPSG:4326"}

	_, err := task.Perform(context.Background())
	assert.Error(t, err)
}
