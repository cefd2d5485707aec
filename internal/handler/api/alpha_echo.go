package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	models "ForAlpha/internal/domain/models"
	icache "ForAlpha/internal/service/cache"
	imetrics "ForAlpha/internal/service/metrics"
	"ForAlpha/internal/service/ratelimit"
	"ForAlpha/internal/usecase"
	xhttp "ForAlpha/pkg/http"
	xlogger "ForAlpha/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CacheTTLs controls per-endpoint response caching. A zero TTL disables
// caching for that endpoint.
type CacheTTLs struct {
	Alpha  time.Duration
	Scores time.Duration
	Advice time.Duration
}

// AlphaEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type AlphaEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.AlphaService
	cache   icache.BytesCache
	limiter *ratelimit.Limiter
	ttl     CacheTTLs
}

func NewAlphaEchoHandler(logger *xlogger.Logger, svc *usecase.AlphaService, cache icache.BytesCache, ttl CacheTTLs) *AlphaEchoHandler {
	imetrics.Register()
	return &AlphaEchoHandler{
		logger:  logger,
		svc:     svc,
		cache:   cache,
		limiter: ratelimit.New(),
		ttl:     ttl,
	}
}

func (h *AlphaEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/alpha", h.Alpha)
	g.GET("/advice", h.Advice)
	g.GET("/scores", h.Scores)
	g.POST("/scores", h.UploadScores)
	e.GET("/health", h.Healthz)
}

// Healthz reports liveness plus backing-store reachability.
func (h *AlphaEchoHandler) Healthz(c echo.Context) error {
	if err := h.svc.Health(c.Request().Context()); err != nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Alpha returns the blended forensic alpha table for a symbol.
func (h *AlphaEchoHandler) Alpha(c echo.Context) error {
	start := time.Now()
	defer func() { imetrics.AlphaLatency.WithLabelValues("alpha").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c) {
		return tooManyRequests(c)
	}

	req := &models.AlphaRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("alpha:%s:%d", req.Symbol, req.MinSignals)
	if b, ok := h.cached(key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	recs, err := h.svc.Table(c.Request().Context(), req.Symbol, req.MinSignals)
	if err != nil {
		imetrics.AlphaErrors.WithLabelValues("alpha").Inc()
		h.logger.Error("alpha usecase error", xlogger.Error(err), xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, err)
	}

	return h.respondCached(c, key, recs, h.ttl.Alpha)
}

// Advice returns the alpha table plus the advisor's recommendation.
func (h *AlphaEchoHandler) Advice(c echo.Context) error {
	start := time.Now()
	defer func() { imetrics.AlphaLatency.WithLabelValues("advice").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c) {
		return tooManyRequests(c)
	}

	req := &models.AdviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("advice:%s:%d", req.Symbol, req.MinSignals)
	if b, ok := h.cached(key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	recs, advice, err := h.svc.Advise(c.Request().Context(), req.Symbol, req.MinSignals)
	if err != nil {
		imetrics.AlphaErrors.WithLabelValues("advice").Inc()
		h.logger.Error("advice usecase error", xlogger.Error(err), xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, err)
	}
	if advice.Fallback {
		imetrics.AdvisorFallbacks.Inc()
	}

	res := map[string]interface{}{
		"symbol": req.Symbol,
		"table":  recs,
		"advice": advice,
	}
	return h.respondCached(c, key, res, h.ttl.Advice)
}

// Scores returns the merged raw score table, one row per fiscal year.
func (h *AlphaEchoHandler) Scores(c echo.Context) error {
	start := time.Now()
	defer func() { imetrics.AlphaLatency.WithLabelValues("scores").Observe(time.Since(start).Seconds()) }()

	if !h.allow(c) {
		return tooManyRequests(c)
	}

	req := &models.ScoresRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := "scores:" + req.Symbol
	if b, ok := h.cached(key); ok {
		return xhttp.DataResponse(c, http.StatusOK, json.RawMessage(b))
	}

	rows, err := h.svc.Assembled(c.Request().Context(), req.Symbol)
	if err != nil {
		imetrics.AlphaErrors.WithLabelValues("scores").Inc()
		h.logger.Error("scores usecase error", xlogger.Error(err), xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, err)
	}

	total := int64(len(rows))
	if h.cache != nil && h.ttl.Scores > 0 {
		if b, merr := json.Marshal(&xhttp.ListDataResponse{Rows: rows, Total: total}); merr == nil {
			if cerr := h.cache.SetBytes(key, b, h.ttl.Scores); cerr != nil {
				h.logger.Warn("cache set failed", xlogger.Error(cerr), xlogger.String("key", key))
			}
		}
	}
	return xhttp.ListResponse(c, rows, total)
}

// UploadScores accepts one metric's series for a symbol.
func (h *AlphaEchoHandler) UploadScores(c echo.Context) error {
	start := time.Now()
	defer func() { imetrics.AlphaLatency.WithLabelValues("upload").Observe(time.Since(start).Seconds()) }()

	req := &models.ScoreUploadRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.svc.Upload(c.Request().Context(), req, time.Now().Unix()); err != nil {
		imetrics.AlphaErrors.WithLabelValues("upload").Inc()
		h.logger.Error("upload usecase error", xlogger.Error(err), xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.CreatedResponse(c, map[string]interface{}{
		"symbol": req.Symbol,
		"metric": req.Metric,
		"points": len(req.Points),
	})
}

func (h *AlphaEchoHandler) allow(c echo.Context) bool {
	// 10 rps with burst 20 per client IP
	return h.limiter.Allow(c.RealIP(), 20, 10)
}

func (h *AlphaEchoHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	return b, true
}

// respondCached serializes data once, stores it under key, and replies with
// the standard success envelope.
func (h *AlphaEchoHandler) respondCached(c echo.Context, key string, data interface{}, ttl time.Duration) error {
	b, err := json.Marshal(data)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil && ttl > 0 {
		if err := h.cache.SetBytes(key, b, ttl); err != nil {
			h.logger.Warn("cache set failed", xlogger.Error(err), xlogger.String("key", key))
		}
	}
	return xhttp.SuccessResponse(c, json.RawMessage(b))
}

func tooManyRequests(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
}
