// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// apiResponse is the envelope of every json response
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// sendSuccess sends a successful json response
func sendSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

// sendError sends an error json response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

// bearerAuth validates a HS256 signed bearer token with an expiry
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			s.metrics.recordAuthRequest(false)
			sendError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token, err := parser.Parse(raw, keyFunc)
		if err != nil || !token.Valid {
			s.metrics.recordAuthRequest(false)
			s.logger.Debug("rejected token", "error", err)
			sendError(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		s.metrics.recordAuthRequest(true)
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs every request with its status and duration
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
