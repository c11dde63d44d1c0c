package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"campusnotify/internal/dispatch"
	"campusnotify/internal/domain"
	"campusnotify/internal/schedule"
	"campusnotify/internal/store/pg"
	"campusnotify/internal/util"
	"campusnotify/internal/validate"
)

// API exposes the dispatch facade over HTTP for the composer UI.
type API struct {
	Dispatcher *dispatch.Dispatcher
	Store      *pg.Store
	Sched      *schedule.Scheduler
	// BaseCtx bounds scheduled dispatch runs; cancel it on shutdown.
	BaseCtx context.Context
}

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/dispatch", a.handleDispatch).Methods(http.MethodPost)
	r.HandleFunc("/v1/dispatch/scheduled/{id}", a.handleCancelScheduled).Methods(http.MethodDelete)
	r.HandleFunc("/v1/reports", a.handleListReports).Methods(http.MethodGet)
	r.HandleFunc("/v1/reports/{id}", a.handleGetReport).Methods(http.MethodGet)
	return r
}

type scheduledResponse struct {
	ScheduleID  string    `json:"scheduleId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type validationResponse struct {
	Errors   []domain.Issue `json:"errors"`
	Warnings []domain.Issue `json:"warnings,omitempty"`
}

func (a *API) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if !msg.Schedule.SendImmediately {
		a.scheduleDispatch(w, msg)
		return
	}

	report, err := a.Dispatcher.Dispatch(r.Context(), msg)
	if err != nil {
		var vfe domain.ValidationFailedError
		if errors.As(err, &vfe) {
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: vfe.Issues})
			return
		}
		slog.Error("dispatch failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	a.saveReport(r.Context(), report)
	writeJSON(w, http.StatusOK, report)
}

func (a *API) scheduleDispatch(w http.ResponseWriter, msg domain.Message) {
	res := validate.Check(msg, time.Now())
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: res.Errors, Warnings: res.Warnings})
		return
	}

	id := util.NewDispatchID()
	at := msg.Schedule.ScheduledAt
	a.Sched.At(a.BaseCtx, id, at, func(ctx context.Context) {
		// Fire as an immediate send; the lead-time rule no longer applies.
		fire := msg
		fire.Schedule = domain.Schedule{SendImmediately: true}
		report, err := a.Dispatcher.Dispatch(ctx, fire)
		if err != nil {
			slog.Error("scheduled dispatch failed", "schedule_id", id, "err", err)
			return
		}
		a.saveReport(ctx, report)
		slog.Info("scheduled dispatch finished",
			"schedule_id", id,
			"report_id", report.ID,
			"success", report.Success,
		)
	})

	writeJSON(w, http.StatusAccepted, scheduledResponse{ScheduleID: id, ScheduledAt: at})
}

func (a *API) handleCancelScheduled(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !a.Sched.Cancel(id) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, found, err := a.Store.GetReport(r.Context(), id)
	if err != nil {
		slog.Error("get report failed", "err", err, "id", id)
		http.Error(w, "db error", http.StatusBadGateway)
		return
	}
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := a.Store.ListReports(r.Context(), limit)
	if err != nil {
		slog.Error("list reports failed", "err", err)
		http.Error(w, "db error", http.StatusBadGateway)
		return
	}
	if reports == nil {
		reports = []pg.ReportSummary{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (a *API) saveReport(ctx context.Context, report domain.DispatchReport) {
	if a.Store == nil {
		return
	}
	if err := a.Store.SaveReport(ctx, report); err != nil {
		// Audit storage is best effort; the caller already has the report.
		slog.Error("save report failed", "err", err, "report_id", report.ID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
