package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dinepos/internal/export"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"github.com/smallbiznis/dinepos/pkg/db/pagination"
	"go.uber.org/zap"
)

type closeOrderRequest struct {
	ReleaseTo string `json:"release_to"`
}

// PlaceOrder commits the order and then seats a dine-in order at its table.
// Problems after the commit are reported as warnings next to the stored order.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req orderdomain.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	result, err := s.orderSvc.PlaceOrder(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	warnings := []string{}
	if result.MirrorErr != nil {
		warnings = append(warnings, result.MirrorErr.Error())
	}

	order := result.Order
	if order.OrderType == orderdomain.OrderTypeDineIn && order.TableID != nil {
		if _, err := s.tableSvc.Occupy(ctx, *order.TableID, order.ID); err != nil {
			s.log.Warn("table occupy failed after order commit",
				zap.Int64("order_id", order.ID),
				zap.Int64("table_id", *order.TableID),
				zap.Error(err),
			)
			warnings = append(warnings, fmt.Sprintf("table_occupy_failed: %v", err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"data": order, "warnings": warnings})
}

func (s *Server) QuoteOrder(c *gin.Context) {
	var req orderdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.orderSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parseOptionalInt(query.PageSize)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page_size"))
		return
	}

	req := orderdomain.ListRequest{Pagination: pagination.Pagination{PageToken: strings.TrimSpace(query.PageToken)}}
	if pageSize != nil {
		req.PageSize = *pageSize
	}

	resp, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Orders, "page_info": resp.PageInfo})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, orderdomain.ErrInvalidID)
		return
	}

	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) CloseOrder(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, orderdomain.ErrInvalidID)
		return
	}

	var req closeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.orderSvc.Close(c.Request.Context(), orderdomain.CloseRequest{
		OrderID: id,
		Release: tabledomain.Status(strings.ToLower(strings.TrimSpace(req.ReleaseTo))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ExportBill(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, orderdomain.ErrInvalidID)
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatPDF)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := s.orderSvc.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.exporter.Bill(ctx, order, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}

func writeDocument(c *gin.Context, doc *export.Document) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
