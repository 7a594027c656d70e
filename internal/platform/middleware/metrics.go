// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/metrics"
)

// Metrics records request count and latency labelled by the matched chi route
// pattern, so /titles/1 and /titles/2 share one series.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := ""
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			route = routeContext.RoutePattern()
		}
		metrics.RecordHTTPRequest(request.Method, route, recorder.status, time.Since(startTime))
	})
}
