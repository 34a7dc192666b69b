// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/cache"
	"github.com/hashicorp/go-blobscan/entropy"
	"github.com/hashicorp/go-blobscan/internal/report"
)

// handleHealth reports the server as healthy
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "ok"})
}

// handleScan lists the signature matches of the body
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	buf, err := blobscan.Load(r.Body, cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	defer buf.Close()

	matches := slices.Collect(cfg.Catalog().Matches(buf.Bytes(), cfg.ScanMode()))
	sendSuccess(w, report.Matches(matches))
}

// handleProbe decodes every signature match of the body
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts []blobscan.ConfigOption
	if v := q.Get("window"); v != "" {
		window, err := strconv.Atoi(v)
		if err != nil {
			sendError(w, fmt.Sprintf("invalid window %q", v), http.StatusBadRequest)
			return
		}
		opts = append(opts, blobscan.WithProbeWindow(window))
	}
	if v := q.Get("workers"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil || workers < 1 {
			sendError(w, fmt.Sprintf("invalid workers %q", v), http.StatusBadRequest)
			return
		}
		opts = append(opts, blobscan.WithWorkers(workers))
	}

	cfg, err := s.requestConfig(r, opts...)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	buf, err := blobscan.Load(r.Body, cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	defer buf.Close()

	key := cache.Key(buf.Bytes(), cfg.ScanMode().String(), cfg.ProbeMode().String(), strconv.Itoa(cfg.Catalog().Len()))
	if s.cache != nil {
		var cached report.Probe
		rec, err := s.cache.Get(key, &cached)
		switch {
		case err == nil:
			cached.RunID = rec.RunID.String()
			cached.Cached = true
			sendSuccess(w, cached)
			return
		case !errors.Is(err, cache.ErrNotFound):
			s.logger.Warn("reading probe cache failed", "error", err)
		}
	}

	rep, err := blobscan.Probe(r.Context(), buf.Bytes(), cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	out := report.NewProbe(rep, nil)

	if s.cache != nil {
		id, err := s.cache.Put(key, out)
		if err != nil {
			s.logger.Warn("writing probe cache failed", "error", err)
		} else {
			out.RunID = id.String()
		}
	}
	sendSuccess(w, out)
}

// handleDecode decodes the segment at the offset query parameter. With
// "Accept: application/octet-stream" the decoded bytes are returned.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, err := strconv.ParseInt(q.Get("offset"), 0, 64)
	if err != nil || offset < 0 {
		sendError(w, fmt.Sprintf("invalid offset %q", q.Get("offset")), http.StatusBadRequest)
		return
	}
	mode := blobscan.ToEnd
	if v := q.Get("length"); v != "" {
		length, err := strconv.Atoi(v)
		if err != nil {
			sendError(w, fmt.Sprintf("invalid length %q", v), http.StatusBadRequest)
			return
		}
		if length >= 0 {
			mode = blobscan.Bounded(length)
		}
	}

	cfg, err := s.requestConfig(r)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	buf, err := blobscan.Load(r.Body, cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	defer buf.Close()

	res, err := blobscan.DecodeAt(buf.Bytes(), int(offset), mode, cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}

	if r.Header.Get("Accept") == "application/octet-stream" {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
		w.Header().Set("X-Blobscan-Codec", res.Codec.String())
		w.Header().Set("X-Blobscan-Crc32", fmt.Sprintf("%08x", res.CRC32()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Data)
		return
	}
	sendSuccess(w, report.NewDecode(res, entropy.Shannon(res.Data)))
}

// handleFields reads the field query parameters from the body
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	var specs []blobscan.FieldSpec
	for _, v := range r.URL.Query()["field"] {
		spec, err := blobscan.ParseFieldSpec(v)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		sendError(w, "no field given", http.StatusBadRequest)
		return
	}

	cfg, err := s.requestConfig(r)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	buf, err := blobscan.Load(r.Body, cfg)
	if err != nil {
		sendError(w, err.Error(), statusOf(err))
		return
	}
	defer buf.Close()

	sendSuccess(w, report.Fields(buf.Bytes(), specs))
}

// requestConfig applies the "extended" and "all" query parameters
func (s *Server) requestConfig(r *http.Request, opts ...blobscan.ConfigOption) (*blobscan.Config, error) {
	q := r.URL.Query()
	for name, apply := range map[string]func(bool) blobscan.ConfigOption{
		"extended": func(v bool) blobscan.ConfigOption {
			if v {
				return blobscan.WithCatalog(blobscan.ExtendedCatalog())
			}
			return blobscan.WithCatalog(blobscan.DefaultCatalog())
		},
		"all": func(v bool) blobscan.ConfigOption {
			if v {
				return blobscan.WithScanMode(blobscan.ScanAll)
			}
			return blobscan.WithScanMode(blobscan.ScanFirst)
		},
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", blobscan.ErrInvalidArgument, name, raw)
		}
		opts = append(opts, apply(v))
	}
	return s.config(opts...), nil
}

// statusOf maps library errors to http status codes
func statusOf(err error) int {
	var de *blobscan.DecodeError
	switch {
	case errors.Is(err, blobscan.ErrMaxInputSizeExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, blobscan.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &de):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
