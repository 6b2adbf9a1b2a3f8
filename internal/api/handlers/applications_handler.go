package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/cloud-next/onboarding/internal/api/middleware"
	"github.com/cloud-next/onboarding/internal/api/types"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/services"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type ApplicationsHandler struct {
	svc      services.OnboardingService
	validate Validator
}

func NewApplicationsHandler(svc services.OnboardingService, v Validator) *ApplicationsHandler {
	return &ApplicationsHandler{svc: svc, validate: v}
}

func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	res, err := h.svc.ListApplications(r.Context(), &services.ApplicationFilters{
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    res.Items,
		Meta: &types.Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Page:      res.Page,
			PageSize:  res.PageSize,
			Total:     res.Total,
		},
	})
}

func (h *ApplicationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{
		"total":          stats.Total,
		"byStatus":       stats.ByStatus,
		"notInitialized": stats.NotInitialized(),
	})
}

func (h *ApplicationsHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SearchCandidates(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

// Add enrols applications. IDs may be sent as a list, as pasted text, or
// both.
func (h *ApplicationsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req types.AddAppsRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ids := append(req.AppIDs, onboarding.ParseAppIDs(req.Pasted)...)
	res, err := h.svc.AddApplications(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

func (h *ApplicationsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req types.AppIDsRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	apps, err := h.svc.GetApplications(r.Context(), req.AppIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, apps)
}

func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.GetApplication(r.Context(), chi.URLParam(r, "appId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{
		"application":     app,
		"validationState": app.ValidationState(),
		"missingFields":   onboarding.MissingFields(app.Metadata, app.Metadata.EffectiveAccountType()),
	})
}

func (h *ApplicationsHandler) PatchMetadata(w http.ResponseWriter, r *http.Request) {
	var req types.MetadataPatchRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.UpdateMetadata(r.Context(), chi.URLParam(r, "appId"), req.ToPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, app)
}

func (h *ApplicationsHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), chi.URLParam(r, "appId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, events)
}

func (h *ApplicationsHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, types.Options{
		AWSRegions: onboarding.AWSRegions,
		CIDRSizes:  onboarding.CIDRSizes,
		AZOptions:  onboarding.AZOptions,
	})
}

func (h *ApplicationsHandler) Sample(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, onboarding.SampleInitializationRequest())
}

// Initialize accepts the initialization payload as a raw JSON document, the
// same text the operator edits by hand.
func (h *ApplicationsHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorStr(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	req, err := h.parsePayload(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.SubmitInitialization(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

// ValidateInitialization classifies each row of a draft batch without
// writing anything, optionally copying the first row's values first.
func (h *ApplicationsHandler) ValidateInitialization(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateRowsRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rows := req.Rows
	var formatted []byte
	if req.Payload != "" {
		parsed, err := h.parsePayload([]byte(req.Payload))
		if err != nil {
			writeError(w, r, err)
			return
		}
		rows = parsed.Rows()
		if formatted, err = onboarding.FormatInitializationJSON([]byte(req.Payload)); err != nil {
			writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, err.Error()))
			return
		}
	}
	if len(rows) == 0 {
		writeError(w, r, appErr.New(appErr.CodeInvalid, "no rows to validate"))
		return
	}
	if req.CopyFromFirstRow {
		rows = onboarding.CopyFromFirstRow(rows)
	}
	rows = onboarding.RevalidateAll(rows)

	out := types.RowsValidation{
		Rows:      make([]types.ValidatedRow, 0, len(rows)),
		CanSubmit: onboarding.CanSubmit(rows),
		Payload:   string(formatted),
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, types.ValidatedRow{
			AppID:           row.AppID,
			ValidationState: string(row.ValidationState),
			Missing:         row.MissingFields(),
			Row:             row,
		})
	}
	sum := onboarding.SummarizeRows(rows)
	out.Summary = types.RowSummary{Valid: sum.Valid, Warnings: sum.Warnings, Errors: sum.Errors}
	writeData(w, r, http.StatusOK, out)
}

func (h *ApplicationsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req types.AppIDsRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.InitializeDraft(r.Context(), req.AppIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{
		"rows":    rows,
		"payload": onboarding.BuildRequest(rows),
	})
}

func (h *ApplicationsHandler) PrepareCandidates(w http.ResponseWriter, r *http.Request) {
	action, err := stageParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apps, err := h.svc.PrepareCandidates(r.Context(), action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, _ := onboarding.TransitionFor(action)
	writeData(w, r, http.StatusOK, map[string]any{
		"transition":   t,
		"applications": apps,
	})
}

func (h *ApplicationsHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	action, err := stageParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.AdvanceRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.AdvanceStage(r.Context(), action, req.AppIDs, req.Confirmed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

func (h *ApplicationsHandler) SelectionSummary(w http.ResponseWriter, r *http.Request) {
	var req types.AppIDsRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.SummarizeSelection(r.Context(), req.AppIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

// parsePayload decodes and checks a hand-edited initialization document.
func (h *ApplicationsHandler) parsePayload(body []byte) (onboarding.InitializationRequest, error) {
	req, err := onboarding.ParseInitializationJSON(body)
	if err != nil {
		return req, appErr.Wrap(err, appErr.CodeInvalid, err.Error())
	}
	for i, app := range req.Apps {
		if err := h.validate.Struct(app.Metadata); err != nil {
			return req, appErr.Wrap(validationError(err), appErr.CodeInvalid, "invalid metadata").
				WithMeta("index", i).
				WithMeta("appId", app.AppID)
		}
	}
	return req, nil
}

func stageParam(r *http.Request) (onboarding.Action, error) {
	a, err := onboarding.ParseStage(chi.URLParam(r, "stage"))
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInvalid, "unknown stage, expected dev, stage or prod")
	}
	return a, nil
}
