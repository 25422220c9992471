package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/internal/logging"
	"github.com/voluzi/debugpilot/pkg/debuginfos"
)

const maxSQLBodySize = 1 << 20

func (s *Server) registerRoutes() {
	s.router.Use(logRequests)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/debuginfos/threadcpuusage", s.threadCpuUsage).Methods(http.MethodGet)
	s.router.Handle("/debuginfos/threadcpuusage/stream", s.stream).Methods(http.MethodGet)
	s.router.HandleFunc("/debuginfos/logandconfig", s.logAndConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/debuginfos/executesqlquery", s.executeSQLQuery).Methods(http.MethodPost)
	s.router.HandleFunc("/debuginfos/executesqlupdate", s.executeSQLUpdate).Methods(http.MethodPost)
	s.router.HandleFunc("/debuginfos/threaddump", s.threadDump).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf(logging.HTTP, "%s %s took %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) threadCpuUsage(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(s.sampler.GetHistory())
	if err != nil {
		log.Errorf("error encoding thread cpu usage to json: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (s *Server) logAndConfig(w http.ResponseWriter, r *http.Request) {
	archive, err := s.debugInfos.GetArchive(r.Context())
	if err != nil {
		log.Errorf("error creating debug infos: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(archive.Data)
}

func readSQL(w http.ResponseWriter, r *http.Request) (string, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSQLBodySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	sql := strings.TrimSpace(string(b))
	if sql == "" {
		http.Error(w, "empty sql statement", http.StatusBadRequest)
		return "", false
	}
	return sql, true
}

func (s *Server) executeSQLQuery(w http.ResponseWriter, r *http.Request) {
	sql, ok := readSQL(w, r)
	if !ok {
		return
	}
	csv, err := s.db.ExecuteSQLQuery(r.Context(), sql)
	if err != nil {
		log.Errorf("error executing sql query: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

func (s *Server) executeSQLUpdate(w http.ResponseWriter, r *http.Request) {
	sql, ok := readSQL(w, r)
	if !ok {
		return
	}
	affected, err := s.db.ExecuteSQLUpdate(r.Context(), sql)
	if err != nil {
		log.Errorf("error executing sql update: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(affected))
}

func (s *Server) threadDump(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(debuginfos.LogThreadDump()))
}
