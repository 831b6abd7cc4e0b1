package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/board"
	"github.com/rovshanmuradov/tokenboard/internal/export"
	"github.com/rovshanmuradov/tokenboard/internal/portfolio"
)

type tokensQuery struct {
	Search      string  `form:"q"`
	MinHealth   float64 `form:"min_health" binding:"min=0"`
	MaxSlippage float64 `form:"max_slippage" binding:"min=0"`
	Sort        string  `form:"sort"`
	Desc        bool    `form:"desc"`
	Limit       int     `form:"limit" binding:"min=0"`
}

type quoteQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Amount string `form:"amount"`
}

type swapRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type logsQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

type holdingRequest struct {
	TokenID       string  `json:"token_id" binding:"required"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchase_price"`
}

func abortWithError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	st := s.board.Status()
	state := "ok"
	switch {
	case !st.Ready:
		state = "starting"
	case st.Stale:
		state = "degraded"
	}
	body := gin.H{"status": state, "board": st}
	if s.bus != nil {
		body["events"] = s.bus.Stats()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleTokens(c *gin.Context) {
	var q tokensQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	tokens, err := s.board.Search(board.Query{
		Search:      q.Search,
		MinHealth:   q.MinHealth,
		MaxSlippage: q.MaxSlippage,
		SortBy:      q.Sort,
		Descending:  q.Desc,
		Limit:       q.Limit,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
		"count":  len(tokens),
		"status": s.board.Status(),
	})
}

func (s *Server) handleToken(c *gin.Context) {
	token, err := s.board.Token(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (s *Server) handleSignals(c *gin.Context) {
	signals := s.board.BuySignals()
	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

func (s *Server) handleQuote(c *gin.Context) {
	var q quoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": s.board.QuoteFor(q.From, q.To, q.Amount)})
}

func (s *Server) handleGetSwap(c *gin.Context) {
	pair, quote := s.board.SwapQuote()
	c.JSON(http.StatusOK, gin.H{"pair": pair, "quote": quote})
}

func (s *Server) handleSetSwap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	s.board.SetSwap(req.From, req.To, req.Amount)
	s.handleGetSwap(c)
}

func (s *Server) handleReverseSwap(c *gin.Context) {
	s.board.ReverseSwap()
	s.handleGetSwap(c)
}

func (s *Server) handlePortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Valuation())
}

func (s *Server) handleAddHolding(c *gin.Context) {
	var req holdingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	h, err := s.board.AddHolding(req.TokenID, req.Amount, req.PurchasePrice)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, h)
	case errors.Is(err, board.ErrTokenNotFound):
		abortWithError(c, http.StatusNotFound, err)
	case errors.Is(err, portfolio.ErrInvalidAmount), errors.Is(err, portfolio.ErrInvalidPrice):
		abortWithError(c, http.StatusBadRequest, err)
	default:
		abortWithError(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleRemoveHolding(c *gin.Context) {
	h, err := s.board.RemoveHolding(c.Param("id"))
	if err != nil {
		if errors.Is(err, portfolio.ErrHoldingNotFound) {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.board.Refresh(c.Request.Context()); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":  err.Error(),
			"status": s.board.Status(),
		})
		return
	}
	c.JSON(http.StatusOK, s.board.Status())
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	var (
		buf  bytes.Buffer
		what = c.DefaultQuery("what", "tokens")
	)
	switch what {
	case "tokens":
		err = s.exporter.ExportTokens(&buf, s.board.Tokens(), format)
	case "portfolio":
		err = s.exporter.ExportHoldings(&buf, s.board.Valuation(), format)
	default:
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("unknown export target: %s", what))
		return
	}
	if err != nil {
		s.logger.Error("Export failed", zap.String("what", what), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", what, time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleLogs(c *gin.Context) {
	var q logsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	total, _ := s.logs.Stats()
	c.JSON(http.StatusOK, gin.H{"logs": s.logs.Recent(q.Limit), "total": total})
}
