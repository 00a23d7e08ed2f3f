package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cuemby/bastion/pkg/metrics"
	"github.com/cuemby/bastion/pkg/storage"
	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

func (s *Server) handleRegisterContainer(w http.ResponseWriter, r *http.Request) {
	var req RegisterContainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	level, err := types.ParsePolicyLevel(req.Policy)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.InitPID < 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("negative init_pid %d", req.InitPID))
		return
	}

	// Refuse a stolen init pid before touching any table.
	if req.InitPID > 0 {
		if proc, ok := s.state.Processes.Get(req.InitPID); ok && proc.ContainerID != req.ID {
			s.writeError(w, http.StatusConflict,
				fmt.Errorf("pid %d already bound to another container", req.InitPID))
			return
		}
	}

	// Container row first, then the init binding: readers must never see
	// a process row pointing at nothing.
	if err := s.state.RegisterContainer(req.ID, level); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("container", "error").Inc()
		s.writeError(w, http.StatusInsufficientStorage, err)
		return
	}

	if req.InitPID > 0 {
		err := s.state.BindProcess(req.InitPID, req.ID)
		switch {
		case errors.Is(err, tables.ErrExists):
			// Hooks get retried; an identical binding is fine.
			if proc, ok := s.state.Processes.Get(req.InitPID); !ok || proc.ContainerID != req.ID {
				s.writeError(w, http.StatusConflict,
					fmt.Errorf("pid %d already bound to another container", req.InitPID))
				return
			}
		case err != nil:
			metrics.RegistrationsTotal.WithLabelValues("process", "error").Inc()
			s.writeError(w, http.StatusInsufficientStorage, err)
			return
		}
	}

	if s.store != nil {
		rec := &storage.ContainerRecord{
			ID:           req.ID,
			Name:         req.Name,
			Policy:       level,
			InitPID:      req.InitPID,
			RegisteredAt: time.Now().UTC(),
		}
		if err := s.store.SaveContainer(rec); err != nil {
			s.logger.Error().Err(err).Uint32("container_id", req.ID).Msg("Failed to persist registration")
		}
	}

	metrics.RegistrationsTotal.WithLabelValues("container", "ok").Inc()
	s.logger.Info().
		Uint32("container_id", req.ID).
		Str("policy", level.String()).
		Int32("init_pid", req.InitPID).
		Msg("Container registered")

	s.writeJSON(w, http.StatusCreated, ContainerResponse{
		ID:      req.ID,
		Name:    req.Name,
		Policy:  level.String(),
		InitPID: req.InitPID,
	})
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		recs, err := s.store.ListContainers()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp := make([]ContainerResponse, 0, len(recs))
		for _, rec := range recs {
			resp = append(resp, ContainerResponse{
				ID:      rec.ID,
				Name:    rec.Name,
				Policy:  rec.Policy.String(),
				InitPID: rec.InitPID,
			})
		}
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	resp := make([]ContainerResponse, 0, s.state.Containers.Len())
	s.state.Containers.ForEach(func(id uint32, c types.Container) bool {
		resp = append(resp, ContainerResponse{ID: id, Policy: c.Policy.String()})
		return true
	})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnregisterContainer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint32(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	existed := s.state.UnregisterContainer(id)
	if s.store != nil {
		if err := s.store.DeleteContainer(id); err != nil {
			s.logger.Error().Err(err).Uint32("container_id", id).Msg("Failed to delete registration")
		}
	}
	if existed {
		s.logger.Info().Uint32("container_id", id).Msg("Container unregistered")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBindProcess(w http.ResponseWriter, r *http.Request) {
	var req BindProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.PID <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid pid %d", req.PID))
		return
	}
	if !s.state.Containers.Contains(req.ContainerID) {
		s.writeError(w, http.StatusNotFound,
			fmt.Errorf("container %d not registered", req.ContainerID))
		return
	}

	err := s.state.BindProcess(req.PID, req.ContainerID)
	switch {
	case errors.Is(err, tables.ErrExists):
		s.writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, tables.ErrFull):
		s.writeError(w, http.StatusInsufficientStorage, err)
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("process", "ok").Inc()
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUnbindProcess(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(mux.Vars(r)["pid"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.state.UnbindProcess(pid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolvePolicy(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(mux.Vars(r)["pid"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PolicyResponse{
		PID:        pid,
		Resolution: s.resolver.Resolve(pid).String(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	prev := types.Verdict(req.Prev)
	var verdict types.Verdict

	switch req.Hook {
	case "mount":
		if req.Mount == nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("mount payload required"))
			return
		}
		verdict = s.enf.Mount(req.PID,
			optBytes(req.Mount.Source),
			[]byte(req.Mount.Target),
			optBytes(req.Mount.FSType),
			req.Mount.Flags,
			optBytes(req.Mount.Data),
			prev)
	case "open":
		if req.Open == nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("open payload required"))
			return
		}
		verdict = s.enf.FileOpen(req.PID, optBytes(req.Open.Path), prev)
	case "setuid":
		if req.Setuid == nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("setuid payload required"))
			return
		}
		verdict = s.enf.Setuid(req.PID,
			types.Credentials{UID: req.Setuid.NewUID, GID: req.Setuid.NewGID},
			types.Credentials{UID: req.Setuid.OldUID, GID: req.Setuid.OldGID},
			0, prev)
	case "syslog":
		logType := 0
		if req.Syslog != nil {
			logType = req.Syslog.Type
		}
		verdict = s.enf.Syslog(req.PID, logType, prev)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown hook %q", req.Hook))
		return
	}

	s.writeJSON(w, http.StatusOK, CheckResponse{
		Hook:    req.Hook,
		PID:     req.PID,
		Verdict: int(verdict),
		Result:  verdict.String(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Containers: s.state.Containers.Len(),
		Processes:  s.state.Processes.Len(),
	})
}

func optBytes(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}

func parseUint32(raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint32(v), nil
}

func parsePID(raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid pid %q", raw)
	}
	return int32(v), nil
}
