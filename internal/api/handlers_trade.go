package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/swap"
	"github.com/keene2/meme-server/internal/util"
)

const missingQuoteParams = "Missing required parameters: fromTokenAddress, toTokenAddress, amount, slippage, userWalletAddress"

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (s *Server) getHealth(c echo.Context) error {
	watcherState := "stopped"
	if s.watcher != nil && s.watcher.Running() {
		watcherState = "running"
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]string{
			"trading": "up",
			"market":  "up",
			"watcher": watcherState,
		},
	})
}

type quoteResponse struct {
	Success bool        `json:"success"`
	Source  swap.Source `json:"source"`
	Data    any         `json:"data"`
}

func (s *Server) getQuote(c echo.Context) error {
	req := swap.QuoteRequest{
		FromTokenAddress:  c.QueryParam("fromTokenAddress"),
		ToTokenAddress:    c.QueryParam("toTokenAddress"),
		Amount:            c.QueryParam("amount"),
		Slippage:          c.QueryParam("slippage"),
		UserWalletAddress: c.QueryParam("userWalletAddress"),
	}
	if req.FromTokenAddress == "" || req.ToTokenAddress == "" || req.Amount == "" ||
		req.Slippage == "" || req.UserWalletAddress == "" {
		return fail(c, http.StatusBadRequest, missingQuoteParams)
	}
	if !util.IsUintString(req.Amount) {
		return fail(c, http.StatusBadRequest, "Invalid parameter: amount must be an integer string in smallest units")
	}

	quote, err := s.trading.GetQuote(c.Request().Context(), req)
	if err != nil {
		s.logger.WithError(err).Error("quote request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, quoteResponse{
		Success: true,
		Source:  quote.Source,
		Data:    quote.Data,
	})
}

type buildTransactionRequest struct {
	FromTokenAddress    string `json:"fromTokenAddress"`
	ToTokenAddress      string `json:"toTokenAddress"`
	Amount              string `json:"amount"`
	Slippage            string `json:"slippage"`
	UserWalletAddress   string `json:"userWalletAddress"`
	EnableMevProtection bool   `json:"enableMevProtection"`
	PriorityFee         string `json:"priorityFee"`
	EnableTwap          bool   `json:"enableTwap"`
}

type buildTransactionResponse struct {
	Success      bool        `json:"success"`
	Transaction  string      `json:"transaction"`
	Source       swap.Source `json:"source"`
	MevProtected bool        `json:"mevProtected"`
}

func (s *Server) postBuildTransaction(c echo.Context) error {
	var body buildTransactionRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body")
	}
	if body.FromTokenAddress == "" || body.ToTokenAddress == "" || body.Amount == "" ||
		body.Slippage == "" || body.UserWalletAddress == "" {
		return fail(c, http.StatusBadRequest, missingQuoteParams)
	}
	if !util.IsUintString(body.Amount) {
		return fail(c, http.StatusBadRequest, "Invalid parameter: amount must be an integer string in smallest units")
	}
	if body.PriorityFee != "" && !util.IsUintString(body.PriorityFee) {
		return fail(c, http.StatusBadRequest, "Invalid parameter: priorityFee must be an integer string in micro-lamports")
	}

	req := swap.SwapRequest{
		QuoteRequest: swap.QuoteRequest{
			FromTokenAddress:  body.FromTokenAddress,
			ToTokenAddress:    body.ToTokenAddress,
			Amount:            body.Amount,
			Slippage:          body.Slippage,
			UserWalletAddress: body.UserWalletAddress,
		},
		EnableMevProtection: body.EnableMevProtection,
		PriorityFee:         body.PriorityFee,
		EnableTwap:          body.EnableTwap,
	}

	tx, err := s.trading.BuildTransaction(c.Request().Context(), req)
	if err != nil {
		s.logger.WithError(err).Error("build transaction failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, buildTransactionResponse{
		Success:      true,
		Transaction:  tx.Payload,
		Source:       tx.Source,
		MevProtected: tx.MevProtected,
	})
}

type submitTransactionRequest struct {
	SignedTransaction   string `json:"signedTransaction"`
	EnableMevProtection bool   `json:"enableMevProtection"`
}

type submitTransactionResponse struct {
	Success      bool        `json:"success"`
	TxID         string      `json:"txId"`
	Source       swap.Source `json:"source"`
	MevProtected bool        `json:"mevProtected"`
}

func (s *Server) postSubmitTransaction(c echo.Context) error {
	var body submitTransactionRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body")
	}
	if body.SignedTransaction == "" {
		return fail(c, http.StatusBadRequest, "Missing required parameter: signedTransaction")
	}

	result, err := s.trading.SubmitTransaction(c.Request().Context(), swap.Submission{
		SignedTransaction:   body.SignedTransaction,
		EnableMevProtection: body.EnableMevProtection,
	})
	if err != nil {
		s.logger.WithError(err).Error("submit transaction failed")
		return failFromError(c, err)
	}

	s.logger.WithFields(logrus.Fields{
		"tx_id":  result.TxID,
		"source": result.Source,
	}).Info("transaction submitted")
	return c.JSON(http.StatusOK, submitTransactionResponse{
		Success:      true,
		TxID:         result.TxID,
		Source:       result.Source,
		MevProtected: result.MevProtected,
	})
}
