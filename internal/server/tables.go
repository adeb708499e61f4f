package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
)

type createTableRequest struct {
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
}

type setTableStatusRequest struct {
	Status         string `json:"status"`
	CurrentOrderID *int64 `json:"current_order_id,string"`
}

func (s *Server) ListTables(c *gin.Context) {
	tables, err := s.tableSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tables})
}

func (s *Server) CreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	table, err := s.tableSvc.Add(c.Request.Context(), tabledomain.CreateRequest{
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": table})
}

func (s *Server) GetTableByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, tabledomain.ErrInvalidID)
		return
	}

	table, err := s.tableSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": table})
}

func (s *Server) GetTableByName(c *gin.Context) {
	table, err := s.tableSvc.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": table})
}

func (s *Server) DeleteTable(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, tabledomain.ErrInvalidID)
		return
	}

	if err := s.tableSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteTableByName reports whether a table was removed; an unknown name is
// not an error.
func (s *Server) DeleteTableByName(c *gin.Context) {
	deleted, err := s.tableSvc.DeleteByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}

func (s *Server) SetTableStatus(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, tabledomain.ErrInvalidID)
		return
	}

	var req setTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	table, err := s.tableSvc.SetStatus(c.Request.Context(), tabledomain.SetStatusRequest{
		ID:             id,
		Status:         tabledomain.Status(strings.ToLower(strings.TrimSpace(req.Status))),
		CurrentOrderID: req.CurrentOrderID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": table})
}
