// Package api exposes the resolver, gateway, asset cache, favorites and live
// feed over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algoscan/scand/internal/assets"
	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/favorites"
	"github.com/algoscan/scand/internal/gateway"
	"github.com/algoscan/scand/internal/livefeed"
	"github.com/algoscan/scand/internal/resolver"
	"github.com/algoscan/scand/internal/stream"
)

// Server serves the read API and monitoring endpoints.
type Server struct {
	gw        *gateway.Gateway
	res       *resolver.Resolver
	cache     *assets.Cache
	favorites *favorites.Service
	feed      *livefeed.Feed
	mgr       *stream.Manager
	log       *slog.Logger
	server    *http.Server
}

// NewServer wires the HTTP routes.
func NewServer(port int, gw *gateway.Gateway, res *resolver.Resolver, cache *assets.Cache, fav *favorites.Service, feed *livefeed.Feed, mgr *stream.Manager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		gw:        gw,
		res:       res,
		cache:     cache,
		favorites: fav,
		feed:      feed,
		mgr:       mgr,
		log:       log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/search/{id}", s.handleSearch)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleTransaction)
	mux.HandleFunc("GET /v1/blocks/latest", s.handleLatestBlocks)
	mux.HandleFunc("GET /v1/blocks/{round}", s.handleBlock)
	mux.HandleFunc("GET /v1/blocks/{round}/transactions", s.handleBlockTransactions)
	mux.HandleFunc("GET /v1/assets/{id}", s.handleAsset)

	mux.HandleFunc("GET /v1/favorites", s.handleFavoritesList)
	mux.HandleFunc("PUT /v1/favorites/{id}", s.handleFavoriteAdd)
	mux.HandleFunc("DELETE /v1/favorites/{id}", s.handleFavoriteRemove)
	mux.HandleFunc("POST /v1/favorites/{id}/toggle", s.handleFavoriteToggle)
	mux.HandleFunc("DELETE /v1/favorites", s.handleFavoritesClear)

	mux.HandleFunc("GET /v1/live/{category}", s.handleLive)
	mux.HandleFunc("GET /v1/stream/state", s.handleStreamState)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"stream": s.mgr.State().String(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result := s.gw.SearchByID(r.Context(), id)
	if result == nil {
		writeError(w, http.StatusNotFound, "no block or transaction matches")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var round *uint64
	if raw := r.URL.Query().Get("round"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid round")
			return
		}
		round = &v
	}

	tx := s.res.Resolve(r.Context(), id, round)
	if tx == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleLatestBlocks(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			writeError(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = v
	}
	writeJSON(w, http.StatusOK, s.gw.GetLatestBlocks(r.Context(), limit))
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.ParseUint(r.PathValue("round"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round")
		return
	}
	block := s.gw.GetBlock(r.Context(), round)
	if block == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) handleBlockTransactions(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.ParseUint(r.PathValue("round"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round")
		return
	}
	txns := s.gw.GetBlockTransactions(r.Context(), round)
	if txns == nil {
		txns = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// handleAsset returns cached metadata immediately; uncached assets get queued
// and the caller is told to retry.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if info := s.cache.GetAssetInfo(id); info != nil {
		writeJSON(w, http.StatusOK, info)
		return
	}

	s.cache.RequestAsset(id, nil)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
}

func (s *Server) handleFavoritesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.favorites.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []favorites.FavoriteAsset{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	if err := s.favorites.Add(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	if err := s.favorites.Remove(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	on, err := s.favorites.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": on})
}

func (s *Server) handleFavoritesClear(w http.ResponseWriter, r *http.Request) {
	if err := s.favorites.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("category") {
	case "trades":
		writeJSON(w, http.StatusOK, s.feed.Trades())
	case "liquidity":
		writeJSON(w, http.StatusOK, s.feed.Liquidity())
	case "pools":
		writeJSON(w, http.StatusOK, s.feed.Pools())
	case "aggregated-pools":
		writeJSON(w, http.StatusOK, s.feed.AggregatedPools())
	case "blocks":
		writeJSON(w, http.StatusOK, s.feed.Blocks())
	case "assets":
		writeJSON(w, http.StatusOK, s.feed.Assets())
	default:
		writeError(w, http.StatusNotFound, "unknown category")
	}
}

func (s *Server) handleStreamState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":     s.mgr.State().String(),
		"connected": s.mgr.ConnectionState(),
		"counts":    s.feed.Counts(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
