package api

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"daily-close/internal/errvalues"
	"daily-close/internal/httputil"
	"daily-close/internal/model"
	"daily-close/internal/service"
)

type ManifestRequest struct {
	Title string `json:"title"`
}

type ManifestResponse struct {
	OK    bool   `json:"ok"`
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type ToggleResponse struct {
	OK     bool             `json:"ok"`
	Status model.TaskStatus `json:"status"`
}

type loginPage struct {
	Error string
	Email string
}

type indexPage struct {
	User    string
	Tasks   []model.Task
	Stats   model.DayStat
	Message string
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.views.render(w, r, http.StatusOK, "login.html", loginPage{})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.Error("login error: invalid form")
		s.views.render(w, r, http.StatusBadRequest, "login.html", loginPage{Error: "Invalid credentials"})
		return
	}
	email := r.PostFormValue("email")
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	user, err := s.authService.Login(ctx, email, r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, errvalues.ErrWrongCredentials) {
			logger.Error("login error: service error", slog.String("error", err.Error()))
		}
		logger.Warn("login failed")
		s.views.render(w, r, http.StatusUnauthorized, "login.html", loginPage{Error: "Invalid credentials", Email: email})
		return
	}
	token, err := s.sessions.Issue(user)
	if err != nil {
		logger.Error("login error: issuing session", slog.String("error", err.Error()))
		s.views.render(w, r, http.StatusInternalServerError, "login.html", loginPage{Error: "Something went wrong"})
		return
	}
	http.SetCookie(w, s.sessions.Cookie(token))
	logger.Info("successful login")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.ClearCookie())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tasks, err := s.taskService.ListToday(ctx)
	if err != nil {
		logger.Error("index error: listing tasks", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	stats, err := s.statsService.Today(ctx)
	if err != nil {
		logger.Error("index error: today stats", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.views.render(w, r, http.StatusOK, "index.html", indexPage{
		User:    GetUserFromCtx(r.Context()),
		Tasks:   tasks,
		Stats:   stats,
		Message: service.ContextMessage(stats),
	})
}

func (s *Server) Manifest(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req ManifestRequest
	if isJSON(r) {
		defer r.Body.Close()
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("manifest error: invalid body")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	} else {
		req.Title = r.FormValue("title")
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	task, err := s.taskService.CreateTask(ctx, service.TaskInput{Title: req.Title})
	if err != nil {
		switch {
		case errors.Is(err, errvalues.ErrEmptyTitle):
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "Title required", nil)
		case errors.Is(err, errvalues.ErrTitleTooLong):
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "Title too long", nil)
		default:
			logger.Error("manifest error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating task", nil)
		}
		return
	}
	logger.Info("task created", slog.Uint64("task_id", uint64(task.ID)))
	httputil.WriteJSONResponse(w, http.StatusOK, ManifestResponse{OK: true, ID: task.ID, Title: task.Title})
}

func (s *Server) ToggleTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusNotFound, "task not found", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	task, err := s.taskService.ToggleTask(ctx, uint(id))
	if err != nil {
		if errors.Is(err, errvalues.ErrTaskNotFound) {
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task not found", nil)
			return
		}
		logger.Error("toggle error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while toggling task", nil)
		return
	}
	logger.Info("task toggled", slog.Uint64("task_id", id), slog.String("status", string(task.Status)))
	httputil.WriteJSONResponse(w, http.StatusOK, ToggleResponse{OK: true, Status: task.Status})
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.loadDashboard(r)
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.views.render(w, r, http.StatusOK, "dashboard.html", dash)
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.loadDashboard(r)
	if !ok {
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while computing stats", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, dash)
}

func (s *Server) loadDashboard(r *http.Request) (*model.Dashboard, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	dash, err := s.statsService.Dashboard(ctx)
	if err != nil {
		GetLoggerFromCtx(r.Context()).Error("dashboard error: service error", slog.String("error", err.Error()))
		return nil, false
	}
	return dash, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
