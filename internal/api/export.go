package api

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"daily-close/internal/httputil"
	"daily-close/internal/model"
)

const (
	weeklyExportName = "daily-close-weekly"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	weeklySheet      = "Weekly"
)

var weeklyHeader = []string{"date", "total_tasks", "completed", "completion_pct"}

func (s *Server) ExportWeeklyCSV(w http.ResponseWriter, r *http.Request) {
	weekly, ok := s.loadWeekly(r)
	if !ok {
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while exporting", nil)
		return
	}

	httputil.WriteAttachmentHeaders(w, "text/csv", weeklyExportName+".csv")
	cw := csv.NewWriter(w)
	cw.Write(weeklyHeader)
	for _, day := range weekly {
		cw.Write([]string{
			day.Date,
			strconv.Itoa(day.Total),
			strconv.Itoa(day.Closed),
			strconv.Itoa(day.Percent),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		GetLoggerFromCtx(r.Context()).Error("csv export", slog.String("error", err.Error()))
	}
}

func (s *Server) ExportWeeklyXLSX(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	weekly, ok := s.loadWeekly(r)
	if !ok {
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while exporting", nil)
		return
	}

	f, err := weeklyWorkbook(weekly)
	if err != nil {
		logger.Error("xlsx export", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while exporting", nil)
		return
	}
	defer f.Close()

	httputil.WriteAttachmentHeaders(w, xlsxContentType, weeklyExportName+".xlsx")
	if err := f.Write(w); err != nil {
		logger.Error("xlsx export", slog.String("error", err.Error()))
	}
}

func weeklyWorkbook(weekly []model.DayStat) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", weeklySheet); err != nil {
		f.Close()
		return nil, err
	}
	header := make([]interface{}, len(weeklyHeader))
	for i, h := range weeklyHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(weeklySheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, day := range weekly {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{day.Date, day.Total, day.Closed, day.Percent}
		if err := f.SetSheetRow(weeklySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (s *Server) loadWeekly(r *http.Request) ([]model.DayStat, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	weekly, err := s.statsService.Weekly(ctx)
	if err != nil {
		GetLoggerFromCtx(r.Context()).Error("weekly stats", slog.String("error", err.Error()))
		return nil, false
	}
	return weekly, true
}
