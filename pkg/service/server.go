// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pion/turn/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni/v3"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/telemetry/prometheus"
)

const shutdownTimeout = 5 * time.Second

type NodeID string

type MeshServer struct {
	config     *config.Config
	nodeID     NodeID
	registry   *rooms.Registry
	turnServer *turn.Server
	httpServer *http.Server
	promServer *http.Server
	running    atomic.Bool
	doneChan   chan struct{}
	closedChan chan struct{}
}

func NewMeshServer(
	conf *config.Config,
	nodeID NodeID,
	signalService *SignalService,
	registry *rooms.Registry,
	turnServer *turn.Server,
) (*MeshServer, error) {
	s := &MeshServer{
		config:     conf,
		nodeID:     nodeID,
		registry:   registry,
		turnServer: turnServer,
		closedChan: make(chan struct{}),
	}

	middlewares := []negroni.Handler{
		// always the first
		negroni.NewRecovery(),
		negroni.HandlerFunc(RemoveDoubleSlashes),
		cors.New(cors.Options{
			AllowedOrigins: conf.Signal.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet},
		}),
	}

	mux := http.NewServeMux()
	mux.Handle("/signal", signalService)
	mux.HandleFunc("/rooms", s.listRooms)
	mux.HandleFunc("/healthz", s.healthCheck)

	s.httpServer = &http.Server{
		Handler: configureMiddlewares(mux, middlewares...),
	}

	if conf.PrometheusPort > 0 {
		s.promServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.PrometheusPort),
			Handler: promhttp.Handler(),
		}
	}

	return s, nil
}

func (s *MeshServer) Node() NodeID {
	return s.nodeID
}

func (s *MeshServer) HTTPPort() uint32 {
	return s.config.Port
}

func (s *MeshServer) IsRunning() bool {
	return s.running.Load()
}

func (s *MeshServer) Start() error {
	if s.running.Load() {
		return errors.New("already running")
	}
	s.doneChan = make(chan struct{})

	addresses := s.config.BindAddresses
	if addresses == nil {
		addresses = []string{""}
	}

	// ensure we could listen
	listeners := make([]net.Listener, 0)
	for _, addr := range addresses {
		ln, err := net.Listen("tcp", net.JoinHostPort(addr, strconv.Itoa(int(s.config.Port))))
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return err
		}
		listeners = append(listeners, ln)
	}

	var promListener net.Listener
	if s.promServer != nil {
		ln, err := net.Listen("tcp", s.promServer.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return err
		}
		promListener = ln
	}

	values := []interface{}{
		"portHttp", s.config.Port,
		"nodeID", s.nodeID,
		"bindAddresses", addresses,
	}
	if s.config.TURN.Enabled {
		values = append(values, "turn.portUDP", s.config.TURN.UDPPort)
	}
	logger.Infow("starting mesh relay", values...)

	prometheus.Init(string(s.nodeID))

	var eg errgroup.Group
	for _, ln := range listeners {
		ln := ln
		eg.Go(func() error {
			return s.httpServer.Serve(ln)
		})
	}
	if promListener != nil {
		eg.Go(func() error {
			return s.promServer.Serve(promListener)
		})
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- eg.Wait()
	}()

	s.running.Store(true)

	var err error
	select {
	case <-s.doneChan:
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	logger.Infow("shutting down mesh relay", "nodeID", s.nodeID)

	// wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
	if s.promServer != nil {
		_ = s.promServer.Shutdown(ctx)
	}
	if s.turnServer != nil {
		_ = s.turnServer.Close()
	}

	s.running.Store(false)
	close(s.closedChan)
	return err
}

func (s *MeshServer) Stop(force bool) {
	// wait for all participants to exit
	if !force {
		deadline := time.Now().Add(shutdownTimeout)
		for s.registry.NumRooms() > 0 && time.Now().Before(deadline) {
			time.Sleep(100 * time.Millisecond)
		}
	}

	if !s.running.Swap(false) {
		return
	}
	close(s.doneChan)

	// wait for fully closed
	<-s.closedChan
}

func (s *MeshServer) listRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		handleError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	writeJSON(w, s.registry.Rooms())
}

func (s *MeshServer) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func configureMiddlewares(handler http.Handler, middlewares ...negroni.Handler) *negroni.Negroni {
	n := negroni.New()
	for _, m := range middlewares {
		n.Use(m)
	}
	n.UseHandler(handler)
	return n
}
