// Package api provides the HTTP handlers exposing the catalog engine to
// the surrounding application. The engine itself is transport-agnostic;
// this layer only parses parameters, maps sentinel errors to statuses,
// and serializes results.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shopkit-io/catalogd/internal/catalog"
	"github.com/shopkit-io/catalogd/internal/core/config"
	"github.com/shopkit-io/catalogd/internal/recommend"
	"github.com/shopkit-io/catalogd/internal/types"
)

// Handler wires engine operations onto HTTP routes.
type Handler struct {
	engine *recommend.Engine
	syncer *catalog.Syncer
	cfg    *config.ServerConfig
	log    *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(engine *recommend.Engine, syncer *catalog.Syncer, cfg *config.ServerConfig, log *zap.Logger) *Handler {
	return &Handler{engine: engine, syncer: syncer, cfg: cfg, log: log}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/products/{productID}/related", h.relatedProducts)
		r.Get("/suggestions", h.suggestions)
		r.Post("/collections/{collectionID}/sync", h.syncCollection)
		r.Post("/collections/sync", h.syncAll)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// relatedProducts handles GET /v1/products/{productID}/related.
// An unknown product yields an empty list, not 404: recommendation
// absence is a valid outcome.
func (h *Handler) relatedProducts(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid product id")
		return
	}

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	products, err := h.engine.RelatedProducts(r.Context(), id, limit, nil)
	if err != nil {
		h.storeFailure(w, "related products query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, productListResponse{Products: emptyIfNil(products), Count: len(products)})
}

// suggestions handles GET /v1/suggestions?strategy=&limit=.
func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	strategy, err := recommend.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			"strategy must be one of trending, bestsellers, high_rated, new, mixed")
		return
	}

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	products, err := h.engine.SuggestedProducts(r.Context(), limit, strategy)
	if err != nil {
		h.storeFailure(w, "suggestions query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, productListResponse{Products: emptyIfNil(products), Count: len(products)})
}

// syncCollection handles POST /v1/collections/{collectionID}/sync.
func (h *Handler) syncCollection(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseCollectionID(chi.URLParam(r, "collectionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid collection id")
		return
	}

	count, err := h.syncer.SyncCollection(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrCollectionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "collection not found")
			return
		}
		h.storeFailure(w, "collection sync failed", err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{Synced: count})
}

// syncAll handles POST /v1/collections/sync.
func (h *Handler) syncAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.syncer.SyncAll(r.Context())
	if err != nil {
		h.storeFailure(w, "catalog-wide sync failed", err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{Synced: count})
}

// parseLimit reads the limit query parameter, applying the configured
// default and ceiling. Reports false after writing a 400.
func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.cfg.DefaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
		return 0, false
	}
	if limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}
	return limit, true
}

// storeFailure maps store-level failures to 503. The wrapped cause is
// logged, not leaked to the client.
func (h *Handler) storeFailure(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	writeError(w, http.StatusServiceUnavailable, "store_unavailable", msg)
}

type productListResponse struct {
	Products []types.Product `json:"products"`
	Count    int             `json:"count"`
}

type syncResponse struct {
	Synced int `json:"synced"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func emptyIfNil(products []types.Product) []types.Product {
	if products == nil {
		return []types.Product{}
	}
	return products
}
