package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logmocks "github.com/JulianoL13/app-config-aggregator/internal/common/logs/mocks"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	descriptorhttp "github.com/JulianoL13/app-config-aggregator/internal/descriptor/http"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var records = []descriptor.Record{
	{Rank: 1, Score: 78, Protocol: "vless", Address: "a.example.com:443", Link: "vless://a"},
	{Rank: 2, Score: 60, Protocol: "trojan", Address: "b.example.com:443", Link: "trojan://b"},
}

type fakeMeta struct {
	meta descriptor.Meta
	err  error
}

func (f fakeMeta) GetMeta(ctx context.Context) (descriptor.Meta, error) {
	return f.meta, f.err
}

func newRouter(reader descriptor.Reader, meta descriptor.MetaReader) http.Handler {
	logger := logmocks.LoggerMock{}
	handler := descriptorhttp.NewHandler(
		descriptor.NewGetDescriptorsUseCase(reader, logger),
		descriptor.NewGetRandomDescriptorUseCase(reader, logger),
		meta,
		logger,
	)
	return descriptorhttp.NewRouter(handler, logger)
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Health(t *testing.T) {
	rec := serve(newRouter(mocks.NewReader(t), fakeMeta{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandler_Meta(t *testing.T) {
	t.Run("returns current snapshot meta", func(t *testing.T) {
		meta := descriptor.Meta{RunID: "run-1", PublishedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Count: 2}
		rec := serve(newRouter(mocks.NewReader(t), fakeMeta{meta: meta}), "/meta")

		assert.Equal(t, http.StatusOK, rec.Code)

		var got descriptor.Meta
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, 2, got.Count)
	})

	t.Run("no snapshot", func(t *testing.T) {
		rec := serve(newRouter(mocks.NewReader(t), fakeMeta{err: descriptor.ErrNoSnapshot}), "/meta")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_GetDescriptors(t *testing.T) {
	t.Run("returns records with default limit", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Limit: 50}).Return(records, 2, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors")

		assert.Equal(t, http.StatusOK, rec.Code)

		var result descriptorhttp.PaginatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Len(t, result.Data, 2)
		assert.Equal(t, 50, result.Limit)
		assert.Equal(t, 2, result.TotalCount)
		assert.Equal(t, "vless://a", result.Data[0].Link)
	})

	t.Run("passes protocol and limit", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Protocol: "trojan", Limit: 5}).Return(records[1:], 1, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors?protocol=TROJAN&limit=5")

		var result descriptorhttp.PaginatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result.Data, 1)
		assert.Equal(t, "trojan", result.Data[0].Protocol)
	})

	t.Run("caps the limit", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Limit: 1000}).Return(records, 2, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors?limit=999999")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ignores invalid limit", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Limit: 50}).Return(records, 2, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors?limit=-3")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Limit: 50}).Return(nil, 0, errors.New("redis down"))

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_Subscription(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{}).Return(records, 2, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/subscription")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "vless://a\ntrojan://b\n", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("base64", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{}).Return(records, 2, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/subscription?format=base64")

		decoded, err := base64.StdEncoding.DecodeString(rec.Body.String())
		require.NoError(t, err)
		assert.Equal(t, "vless://a\ntrojan://b\n", string(decoded))
	})

	t.Run("no snapshot", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{}).Return(nil, 0, descriptor.ErrNoSnapshot)

		rec := serve(newRouter(reader, fakeMeta{}), "/subscription")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_GetRandomDescriptor(t *testing.T) {
	t.Run("returns a descriptor", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{Protocol: "vless"}).Return(records[:1], 1, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors/random?protocol=vless")

		assert.Equal(t, http.StatusOK, rec.Code)

		var result descriptorhttp.RecordResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "a.example.com:443", result.Address)
	})

	t.Run("returns 404 when empty", func(t *testing.T) {
		reader := mocks.NewReader(t)
		reader.On("GetRecords", mock.Anything, descriptor.Filter{}).Return([]descriptor.Record{}, 0, nil)

		rec := serve(newRouter(reader, fakeMeta{}), "/descriptors/random")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
