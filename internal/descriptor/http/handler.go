package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/JulianoL13/app-config-aggregator/internal/common/logs"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

type DescriptorsGetter interface {
	Execute(ctx context.Context, filter descriptor.Filter) (descriptor.GetDescriptorsOutput, error)
}

type RandomDescriptorGetter interface {
	Execute(ctx context.Context, protocol string) (descriptor.Record, error)
}

type Handler struct {
	descriptors DescriptorsGetter
	random      RandomDescriptorGetter
	meta        descriptor.MetaReader
	logger      logs.Logger
}

func NewHandler(descriptors DescriptorsGetter, random RandomDescriptorGetter, meta descriptor.MetaReader, logger logs.Logger) *Handler {
	return &Handler{
		descriptors: descriptors,
		random:      random,
		meta:        meta,
		logger:      logger,
	}
}

type RecordResponse struct {
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Link     string `json:"link"`
}

type PaginatedResponse struct {
	Data       []RecordResponse `json:"data"`
	Limit      int              `json:"limit"`
	TotalCount int              `json:"total_count"`
}

func toResponse(r descriptor.Record) RecordResponse {
	return RecordResponse(r)
}

func parseFilter(r *http.Request) descriptor.Filter {
	q := r.URL.Query()

	f := descriptor.Filter{
		Protocol: strings.ToLower(q.Get("protocol")),
		Limit:    defaultLimit,
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = min(n, maxLimit)
		}
	}

	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, descriptor.ErrNoSnapshot):
		http.Error(w, "no snapshot published", http.StatusNotFound)
	case errors.Is(err, descriptor.ErrNoDescriptorsAvailable):
		http.Error(w, "no descriptors available", http.StatusNotFound)
	default:
		LoggerFromContext(r.Context(), h.logger).Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Health returns service health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Meta describes the current snapshot.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.meta.GetMeta(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Subscription serves every selected link, one per line, in rank order.
// Query params: protocol, format=base64
func (h *Handler) Subscription(w http.ResponseWriter, r *http.Request) {
	filter := descriptor.Filter{Protocol: strings.ToLower(r.URL.Query().Get("protocol"))}

	out, err := h.descriptors.Execute(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var b strings.Builder
	for _, rec := range out.Records {
		b.WriteString(rec.Link)
		b.WriteByte('\n')
	}

	body := b.String()
	if r.URL.Query().Get("format") == "base64" {
		body = base64.StdEncoding.EncodeToString([]byte(body))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

// GetDescriptors returns the ranked selection.
// Query params: protocol, limit
func (h *Handler) GetDescriptors(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	out, err := h.descriptors.Execute(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := make([]RecordResponse, len(out.Records))
	for i, rec := range out.Records {
		data[i] = toResponse(rec)
	}

	writeJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		Limit:      filter.Limit,
		TotalCount: out.Total,
	})
}

// GetRandomDescriptor returns one selected descriptor at random.
// Query params: protocol
func (h *Handler) GetRandomDescriptor(w http.ResponseWriter, r *http.Request) {
	rec, err := h.random.Execute(r.Context(), strings.ToLower(r.URL.Query().Get("protocol")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}
