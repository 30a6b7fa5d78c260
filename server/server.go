// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package server exposes the POI finder over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/Zheng-Bote/get-poi-osm/spatial"
	"github.com/Zheng-Bote/get-poi-osm/store"
	"github.com/gin-gonic/gin"
)

// DefaultRadiusMeters is used when a request carries no radius.
const DefaultRadiusMeters = 100000

// Executor runs queries. *osm.Client satisfies it.
type Executor interface {
	Center(ctx context.Context, input osm.QueryInput) (spatial.Point, error)
	Execute(ctx context.Context, input osm.QueryInput, radiusMeters int, wl osm.Whitelist) (*osm.ResultDocument, error)
}

type Server struct {
	executor Executor
	runs     store.RunRepository
}

// NewServer builds a server. runs may be nil, in which case nothing is
// archived and the history routes are not registered.
func NewServer(executor Executor, runs store.RunRepository) *Server {
	return &Server{
		executor: executor,
		runs:     runs,
	}
}

// Router returns the engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/pois", s.getPois)
	r.GET("/api/overpass-ql", s.getOverpassQL)

	if s.runs != nil {
		r.GET("/api/runs", s.listRuns)
		r.GET("/api/runs/:id", s.getRun)
	}

	return r
}

func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

func optionalFloat(ctx *gin.Context, name string) (*float64, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("invalid %s %q", name, raw)
	}

	return &v, nil
}

type poiRequest struct {
	input     osm.QueryInput
	radius    int
	whitelist osm.Whitelist
}

func parsePoiRequest(ctx *gin.Context) (*poiRequest, error) {
	lat, err := optionalFloat(ctx, "lat")
	if err != nil {
		return nil, err
	}

	lon, err := optionalFloat(ctx, "lon")
	if err != nil {
		return nil, err
	}

	var address *string
	if v, ok := ctx.GetQuery("address"); ok {
		address = &v
	}

	input, err := osm.NewQueryInput(address, lat, lon)
	if err != nil {
		return nil, &requestError{err: err}
	}

	radius := DefaultRadiusMeters

	if raw, ok := ctx.GetQuery("radius"); ok {
		radius, err = strconv.Atoi(raw)
		if err != nil {
			return nil, badRequest("invalid radius %q", raw)
		}
	}

	wl, err := osm.ParseWhitelist(ctx.QueryArray("w"))
	if err != nil {
		return nil, &requestError{err: err}
	}

	return &poiRequest{input: input, radius: radius, whitelist: wl}, nil
}

// statusFor maps a failure to the HTTP status reported to the caller.
func statusFor(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}

	switch osm.KindOf(err) {
	case osm.KindGeocodingNotFound:
		return http.StatusNotFound
	case osm.KindGeocodingInvalidCoordinates:
		return http.StatusUnprocessableEntity
	case osm.KindUpstreamOverloaded:
		return http.StatusServiceUnavailable
	case osm.KindTransport:
		return http.StatusGatewayTimeout
	case osm.KindUpstreamHTTP,
		osm.KindUpstreamApplication,
		osm.KindUpstreamMalformed,
		osm.KindGeocodingInvalidResponse,
		osm.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abort(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	ctx.JSON(status, osm.NewErrorDocument(err))
}

func (s *Server) getPois(ctx *gin.Context) {
	req, err := parsePoiRequest(ctx)
	if err != nil {
		abort(ctx, err)

		return
	}

	doc, err := s.executor.Execute(ctx.Request.Context(), req.input, req.radius, req.whitelist)
	if err != nil {
		abort(ctx, err)

		return
	}

	if s.runs != nil {
		id, err := s.runs.SaveRun(doc)
		if err != nil {
			// the answer is still good, only history is lost
			log.Printf("archiving run: %v", err)
		} else {
			ctx.Header("X-Run-Id", strconv.FormatInt(id, 10))
		}
	}

	ctx.JSON(http.StatusOK, doc)
}

func (s *Server) getOverpassQL(ctx *gin.Context) {
	req, err := parsePoiRequest(ctx)
	if err != nil {
		abort(ctx, err)

		return
	}

	center, err := s.executor.Center(ctx.Request.Context(), req.input)
	if err != nil {
		abort(ctx, err)

		return
	}

	ctx.String(http.StatusOK, osm.BuildQuery(center, req.radius, req.whitelist))
}

func (s *Server) listRuns(ctx *gin.Context) {
	lat, err := optionalFloat(ctx, "lat")
	if err != nil {
		abort(ctx, err)

		return
	}

	lon, err := optionalFloat(ctx, "lon")
	if err != nil {
		abort(ctx, err)

		return
	}

	var runs []*store.Run

	switch {
	case lat != nil && lon != nil:
		p := spatial.Point{Lat: *lat, Lon: *lon}
		if verr := p.Validate(); verr != nil {
			err = &requestError{err: verr}
		} else {
			runs, err = s.runs.ListRunsNear(p)
		}
	case lat != nil || lon != nil:
		err = badRequest("both lat and lon are required")
	default:
		limit := 0
		if raw, ok := ctx.GetQuery("limit"); ok {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				err = badRequest("invalid limit %q", raw)
			}
		}

		if err == nil {
			runs, err = s.runs.ListRuns(limit)
		}
	}

	if err != nil {
		abort(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		abort(ctx, badRequest("invalid run id %q", ctx.Param("id")))

		return
	}

	run, err := s.runs.GetRun(id)
	if errors.Is(err, store.ErrRunNotFound) {
		ctx.JSON(http.StatusNotFound, osm.NewErrorDocument(err))

		return
	}

	if err != nil {
		abort(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, run)
}
