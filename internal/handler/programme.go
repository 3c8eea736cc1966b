package handler

import (
	"bytes"
	"net/http"

	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
	"stage-cue/internal/sheet"
)

const (
	// maxUploadSize caps an imported cue sheet
	maxUploadSize = 10 << 20

	analyticsFilename = "cue_analytics.xlsx"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ProgrammeHandler edits the running order: cue list commits, the event
// title, cue sheet import and analytics export.
type ProgrammeHandler struct {
	events domain.EventService
	log    *logger.Logger
}

// NewProgrammeHandler creates a new ProgrammeHandler
func NewProgrammeHandler(events domain.EventService, log *logger.Logger) *ProgrammeHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &ProgrammeHandler{
		events: events,
		log:    log.WithField("component", "programme_handler"),
	}
}

// HandleSaveCues commits an edited cue list
// PUT /api/cues
func (h *ProgrammeHandler) HandleSaveCues(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cues []domain.Cue `json:"cues"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, "save_cues", err)
		return
	}

	if err := h.events.SaveCues(r.Context(), req.Cues); err != nil {
		respondError(w, h.log, "save_cues", err)
		return
	}
	writeJSON(w, http.StatusOK, EventResponse{Event: h.events.Snapshot(), Progress: h.events.Progress()})
}

// HandleSetTitle renames the event
// PUT /api/event/title
func (h *ProgrammeHandler) HandleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, "set_title", err)
		return
	}

	if err := h.events.SetTitle(r.Context(), req.Title); err != nil {
		respondError(w, h.log, "set_title", err)
		return
	}
	writeJSON(w, http.StatusOK, EventResponse{Event: h.events.Snapshot(), Progress: h.events.Progress()})
}

// HandleImport replaces the cue list from an uploaded .xlsx or .csv sheet.
// A rejected sheet leaves the current event untouched.
// POST /api/import (multipart field "file")
func (h *ProgrammeHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Upload a cue sheet in the \"file\" field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload a cue sheet in the \"file\" field")
		return
	}
	defer file.Close()

	rows, err := sheet.Read(header.Filename, file)
	if err != nil {
		respondError(w, h.log, "import", err)
		return
	}

	cues, err := sheet.ParseCues(rows)
	if err != nil {
		respondError(w, h.log, "import", err)
		return
	}

	if err := h.events.ImportCues(r.Context(), cues); err != nil {
		respondError(w, h.log, "import", err)
		return
	}

	h.log.Info("cue sheet imported", map[string]interface{}{"file": header.Filename, "cues": len(cues)})
	writeJSON(w, http.StatusOK, EventResponse{Event: h.events.Snapshot(), Progress: h.events.Progress()})
}

// HandleAnalytics returns the per-cue analytics dataset as JSON
// GET /api/analytics
func (h *ProgrammeHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.Analytics())
}

// HandleExport downloads the analytics workbook
// GET /api/export
func (h *ProgrammeHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sheet.WriteAnalyticsXLSX(&buf, h.events.Analytics()); err != nil {
		respondError(w, h.log, "export", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+analyticsFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
