package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dinepos/internal/export"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
)

const salesReportTitle = "Sales Report"

type reportRangeQuery struct {
	Period string `form:"period"`
	Start  string `form:"start"`
	End    string `form:"end"`
	TopN   string `form:"top_n"`
	Format string `form:"format"`
}

// rangeRequest reads period, start and end. Dates are calendar days in the
// store time zone.
func (s *Server) rangeRequest(query reportRangeQuery) (reportdomain.RangeRequest, error) {
	period, err := reportdomain.ParsePeriod(query.Period)
	if err != nil {
		return reportdomain.RangeRequest{}, err
	}

	loc := s.cfg.Location()
	start, err := parseOptionalDate(query.Start, loc)
	if err != nil {
		return reportdomain.RangeRequest{}, newValidationError("start", "invalid_start", "start must be YYYY-MM-DD")
	}
	end, err := parseOptionalDate(query.End, loc)
	if err != nil {
		return reportdomain.RangeRequest{}, newValidationError("end", "invalid_end", "end must be YYYY-MM-DD")
	}

	return reportdomain.RangeRequest{Period: period, Start: start, End: end}, nil
}

func (s *Server) GetSalesReport(c *gin.Context) {
	var query reportRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := s.rangeRequest(query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sales, err := s.reportSvc.SalesInRange(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    sales,
		"summary": reportdomain.Summarize(sales),
	})
}

func (s *Server) GetMostSold(c *gin.Context) {
	var query reportRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := s.rangeRequest(query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	topN, err := parseOptionalInt(query.TopN)
	if err != nil {
		AbortWithError(c, reportdomain.ErrInvalidTopN)
		return
	}
	limit := reportdomain.DefaultTopN
	if topN != nil {
		limit = *topN
	}

	items, err := s.reportSvc.MostSold(c.Request.Context(), req, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ExportSalesReport(c *gin.Context) {
	var query reportRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	format := export.FormatPDF
	if query.Format != "" {
		parsed, err := export.ParseFormat(query.Format)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		format = parsed
	}

	req, err := s.rangeRequest(query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	sales, err := s.reportSvc.SalesInRange(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.exporter.Report(ctx, salesReportTitle, export.SalesTable(sales, s.cfg.Location()), format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}
