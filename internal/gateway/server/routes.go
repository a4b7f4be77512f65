package server

import (
	"net/http"

	"codegate/internal/gateway/handler"
	"codegate/internal/gateway/middleware"
)

func NewMux(analysisHandler *handler.AnalysisHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tasks/{taskID}/analysis", analysisHandler.HandleRunAnalysis)
	mux.HandleFunc("GET /api/tasks/{taskID}/reports", analysisHandler.HandleListReports)
	mux.HandleFunc("GET /api/reports/{reportID}/defects", analysisHandler.HandleListDefects)

	return middleware.CORS(mux)
}
