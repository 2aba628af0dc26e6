package runtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aowss/orderbook/internal/bus"
	"github.com/aowss/orderbook/internal/cache"
	"github.com/aowss/orderbook/internal/metrics"
	"github.com/aowss/orderbook/internal/ratelimit"
	"github.com/aowss/orderbook/pkg/matchcore"
)

// Server is the HTTP surface wrapped around a Multiplexer: health, L2
// snapshot and depth-stats queries, and authenticated command submission.
// It never matches orders itself — every handler either reads a consistent
// snapshot via RunOnEngine or hands a wire-encoded command to Dispatch.
type Server struct {
	engine    *gin.Engine
	mux       *Multiplexer
	limiter   *ratelimit.Limiter
	publisher *bus.Publisher // nil when the event bus is unavailable; trades are simply not republished
	symbols   *cache.SymbolCache
	logger    *zap.Logger
	started   time.Time
}

// NewServer builds the router and registers every route. jwtSecret is
// passed straight to AuthMiddleware. publisher may be nil.
func NewServer(mux *Multiplexer, limiter *ratelimit.Limiter, publisher *bus.Publisher, symbols *cache.SymbolCache, jwtSecret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{engine: engine, mux: mux, limiter: limiter, publisher: publisher, symbols: symbols, logger: logger, started: time.Now()}
	s.registerRoutes(jwtSecret)
	return s
}

// Handler exposes the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) registerRoutes(jwtSecret string) {
	s.engine.GET("/health", s.health)
	s.engine.GET("/symbols", s.listSymbols)
	s.engine.GET("/symbols/:symbol/book", s.bookSnapshot)
	s.engine.GET("/symbols/:symbol/stats", s.depthStats)

	authorized := s.engine.Group("/symbols/:symbol/commands")
	authorized.Use(AuthMiddleware(jwtSecret))
	authorized.Use(s.rateLimited())
	authorized.POST("", s.submitCommand)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.started).String(),
		"symbols": s.mux.Symbols(),
	})
}

func (s *Server) listSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": s.mux.Symbols()})
}

func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get(ctxUIDKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing uid"})
			return
		}
		allowed, err := s.limiter.Allow(c.Request.Context(), uid.(uint64))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// bookRequest is the query-string shape for GET .../book.
type bookRequest struct {
	Limit int `form:"limit"`
}

func (s *Server) bookSnapshot(c *gin.Context) {
	symbol := c.Param("symbol")
	var req bookRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var asks, bids []matchcore.L2Entry
	err := s.mux.RunOnEngine(c.Request.Context(), symbol, func(e *matchcore.Engine) {
		asks = e.FillAsks(req.Limit)
		bids = e.FillBids(req.Limit)
	})
	if err != nil {
		s.writeRoutingError(c, err)
		return
	}

	metrics.BookDepth.WithLabelValues(symbol, "ask").Set(float64(len(asks)))
	metrics.BookDepth.WithLabelValues(symbol, "bid").Set(float64(len(bids)))
	c.JSON(http.StatusOK, gin.H{"asks": asks, "bids": bids})
}

func (s *Server) depthStats(c *gin.Context) {
	symbol := c.Param("symbol")
	var asks, bids []matchcore.L2Entry
	err := s.mux.RunOnEngine(c.Request.Context(), symbol, func(e *matchcore.Engine) {
		asks = e.FillAsks(0)
		bids = e.FillBids(0)
	})
	if err != nil {
		s.writeRoutingError(c, err)
		return
	}
	c.JSON(http.StatusOK, ComputeDepthStats(asks, bids))
}

// commandRequest is the JSON shape accepted at POST .../commands. It maps
// 1:1 onto a PLACE wire request; cancel/reduce/move use a subset of the
// same fields (spec.md §4.2).
type commandRequest struct {
	Opcode          string `json:"opcode" binding:"required,oneof=place cancel reduce move"`
	OrderID         uint64 `json:"order_id" binding:"required"`
	Price           int64  `json:"price"`
	ReserveBidPrice int64  `json:"reserve_bid_price"`
	Size            int64  `json:"size"`
	Action          string `json:"action" binding:"omitempty,oneof=bid ask"`
	OrderType       string `json:"order_type" binding:"omitempty,oneof=gtc ioc ioc_budget fok fok_budget"`
}

const ctxUIDKey = "uid"

func (s *Server) submitCommand(c *gin.Context) {
	symbol := c.Param("symbol")
	uid := c.MustGet(ctxUIDKey).(uint64)
	requestID := NewRequestID()
	c.Header("X-Request-Id", requestID)

	// A cache lookup rejects an unknown symbol before ever touching the
	// multiplexer's queue, so a typo'd symbol doesn't cost a round trip
	// through a worker goroutine just to be told "unknown symbol".
	if _, ok := s.symbols.Get(symbol); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown symbol %q", symbol), "request_id": requestID})
		return
	}

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}

	buf, err := encodeCommand(req, uid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Sized generously for this admin path: a single command can in
	// principle walk an entire book's worth of resting orders, each
	// contributing one 49-byte trade event. The raw wire transport's
	// callers size this buffer to their own known worst case instead.
	out := matchcore.NewWriter(make([]byte, 64*1024), 0)
	start := time.Now()
	err = s.mux.Dispatch(c.Request.Context(), symbol, buf, 0, time.Now().UnixNano(), out)
	metrics.MatchLatency.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeRoutingError(c, err)
		return
	}

	resp := decodeResponse(req.Opcode, out.Bytes(0))
	metrics.CommandsProcessed.WithLabelValues(symbol, req.Opcode, resp.Code.String()).Inc()
	for _, t := range resp.Trades {
		metrics.TradeVolume.WithLabelValues(symbol).Add(float64(t.Volume))
	}
	if s.publisher != nil && len(resp.Trades) > 0 {
		s.publisher.PublishTrades(c.Request.Context(), symbol, resp)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) writeRoutingError(c *gin.Context, err error) {
	if err == context.DeadlineExceeded || err == context.Canceled {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
}
