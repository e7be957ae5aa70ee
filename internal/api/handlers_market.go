package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keene2/meme-server/internal/okx"
)

type marketResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (s *Server) getSupportedChains(c echo.Context) error {
	data, err := s.market.SupportedChains(c.Request().Context())
	if err != nil {
		s.logger.WithError(err).Error("supported chains request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: data})
}

func (s *Server) getTokenPrice(c echo.Context) error {
	chainIndex := c.QueryParam("chainIndex")
	tokenAddress := c.QueryParam("tokenContractAddress")
	if chainIndex == "" || tokenAddress == "" {
		return fail(c, http.StatusBadRequest, "Missing required parameters: chainIndex, tokenContractAddress")
	}

	data, err := s.market.TokenPrice(c.Request().Context(), chainIndex, tokenAddress)
	if err != nil {
		s.logger.WithError(err).Error("token price request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: data})
}

type batchPricesRequest struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
}

func (s *Server) postBatchTokenPrices(c echo.Context) error {
	var body batchPricesRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body")
	}
	if body.ChainIndex == "" || body.TokenContractAddress == "" {
		return fail(c, http.StatusBadRequest, "Missing required parameters: chainIndex, tokenContractAddress")
	}

	data, err := s.market.BatchTokenPrices(c.Request().Context(), body.ChainIndex, body.TokenContractAddress)
	if err != nil {
		s.logger.WithError(err).Error("batch token prices request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: data})
}

func (s *Server) getKline(c echo.Context) error {
	req := okx.CandlesRequest{
		ChainIndex:           c.QueryParam("chainIndex"),
		TokenContractAddress: c.QueryParam("tokenContractAddress"),
		Bar:                  c.QueryParam("bar"),
		After:                c.QueryParam("after"),
		Before:               c.QueryParam("before"),
	}
	if req.ChainIndex == "" || req.TokenContractAddress == "" {
		return fail(c, http.StatusBadRequest, "Missing required parameters: chainIndex, tokenContractAddress")
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return fail(c, http.StatusBadRequest, "Invalid parameter: limit must be a positive integer")
		}
		req.Limit = n
	}

	data, err := s.market.Candles(c.Request().Context(), req)
	if err != nil {
		s.logger.WithError(err).Error("candles request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: data})
}

func (s *Server) getPopularPrices(c echo.Context) error {
	prices, err := s.market.PopularPrices(c.Request().Context())
	if err != nil {
		s.logger.WithError(err).Error("popular prices request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: prices})
}

func (s *Server) getTotalValue(c echo.Context) error {
	address := c.QueryParam("address")
	if address == "" {
		return fail(c, http.StatusBadRequest, "Missing required parameter: address")
	}

	data, err := s.market.TotalValue(c.Request().Context(), address, c.QueryParam("chains"))
	if err != nil {
		s.logger.WithError(err).Error("total value request failed")
		return failFromError(c, err)
	}
	return c.JSON(http.StatusOK, marketResponse{Success: true, Data: data})
}
