package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableDrafts interface {
	Grid() dto.GridResponse
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.DraftResponse, error)
	Get(ctx context.Context, draftID string) (*dto.DraftResponse, error)
	Discard(ctx context.Context, draftID string) error
	Availability(ctx context.Context, draftID string, query dto.AvailabilityQuery) (*dto.AvailabilityResponse, error)
	AddSlot(ctx context.Context, draftID string, req dto.AddSlotRequest) (*dto.SlotMutationResponse, error)
	EditSlot(ctx context.Context, draftID string, req dto.EditSlotRequest) (*dto.SlotMutationResponse, error)
	RemoveSlot(ctx context.Context, draftID string, req dto.RemoveSlotRequest) (*dto.SlotMutationResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (*dto.SaveTimetableResponse, error)
	Open(ctx context.Context, timetableID string) (*dto.DraftResponse, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error)
	Delete(ctx context.Context, timetableID string) error
	Publish(ctx context.Context, timetableID string) (*models.Timetable, error)
}

type workloadReports interface {
	ForTeacher(ctx context.Context, draftID, teacherID string) (*timetable.Workload, bool, error)
	ForAll(ctx context.Context, draftID string) (*dto.WorkloadSummaryResponse, bool, error)
}

type timetableExporter interface {
	Timetable(ctx context.Context, draftID, format string) (*service.ExportResult, error)
	WorkloadPDF(ctx context.Context, draftID, teacherID string) (*service.ExportResult, error)
}

// TimetableHandler exposes timetable generation, editing and persistence endpoints.
type TimetableHandler struct {
	drafts    timetableDrafts
	workloads workloadReports
	exports   timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(drafts *service.TimetableService, workloads *service.WorkloadService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{drafts: drafts, workloads: workloads, exports: exports}
}

// Grid godoc
// @Summary Weekly grid
// @Description Days, periods with clock times, the lunch break and the room pools.
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.drafts.Grid(), nil)
}

// Generate godoc
// @Summary Generate a timetable draft
// @Description Places every theory and lab session of the roster. Sessions that fit nowhere are listed as unplaced.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	draft, err := h.drafts.Generate(c.Request.Context(), req)
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	response.Created(c, draft, map[string]interface{}{"unplaced": len(draft.Unplaced)})
}

// Draft godoc
// @Summary Get a draft
// @Tags Timetable
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/drafts/{id} [get]
func (h *TimetableHandler) Draft(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetRevision(c, draft.Revision)
	response.JSON(c, http.StatusOK, draft, nil, middleware.ExtractMeta(c))
}

// DiscardDraft godoc
// @Summary Discard a draft
// @Tags Timetable
// @Param id path string true "Draft ID"
// @Success 204
// @Router /timetables/drafts/{id} [delete]
func (h *TimetableHandler) DiscardDraft(c *gin.Context) {
	if err := h.drafts.Discard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Availability godoc
// @Summary Legal placements for a day
// @Description Lists legal start periods for the kind together with the rooms free at each.
// @Tags Timetable
// @Produce json
// @Param id path string true "Draft ID"
// @Param day query string true "Day name or 1-7"
// @Param kind query string false "theory or lab"
// @Param start query int false "Only this start period"
// @Param teacherId query string false "Drop starts where this teacher is busy"
// @Param excludeClassId query string false "Class of the session being edited"
// @Param excludeDay query string false "Day of the session being edited"
// @Param excludeStart query int false "Start period of the session being edited"
// @Success 200 {object} response.Envelope
// @Router /timetables/drafts/{id}/availability [get]
func (h *TimetableHandler) Availability(c *gin.Context) {
	var query dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	result, err := h.drafts.Availability(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AddSlot godoc
// @Summary Add a session to a draft
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.AddSlotRequest true "Session placement"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/drafts/{id}/slots [post]
func (h *TimetableHandler) AddSlot(c *gin.Context) {
	var req dto.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	result, err := h.drafts.AddSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	response.Created(c, result)
}

// EditSlot godoc
// @Summary Move a session of a draft
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.EditSlotRequest true "Session move"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/drafts/{id}/slots [put]
func (h *TimetableHandler) EditSlot(c *gin.Context) {
	var req dto.EditSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	result, err := h.drafts.EditSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RemoveSlot godoc
// @Summary Remove a session from a draft
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.RemoveSlotRequest true "Session reference"
// @Success 200 {object} response.Envelope
// @Router /timetables/drafts/{id}/slots [delete]
func (h *TimetableHandler) RemoveSlot(c *gin.Context) {
	var req dto.RemoveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	result, err := h.drafts.RemoveSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// TeacherWorkload godoc
// @Summary Weekly workload of one teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Draft ID"
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/drafts/{id}/workload/{teacherId} [get]
func (h *TimetableHandler) TeacherWorkload(c *gin.Context) {
	draftID, teacherID := c.Param("id"), c.Param("teacherId")
	if strings.EqualFold(c.Query("format"), service.ExportFormatPDF) {
		h.writeExport(c, func(ctx context.Context) (*service.ExportResult, error) {
			return h.exports.WorkloadPDF(ctx, draftID, teacherID)
		})
		return
	}
	workload, hit, err := h.workloads.ForTeacher(c.Request.Context(), draftID, teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, workload, nil, middleware.ExtractMeta(c))
}

// Workloads godoc
// @Summary Weekly workload of every scheduled teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/drafts/{id}/workload [get]
func (h *TimetableHandler) Workloads(c *gin.Context) {
	summary, hit, err := h.workloads.ForAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetRevision(c, summary.Revision)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export a draft
// @Tags Timetable
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Draft ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Router /timetables/drafts/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	draftID, format := c.Param("id"), c.Query("format")
	h.writeExport(c, func(ctx context.Context) (*service.ExportResult, error) {
		return h.exports.Timetable(ctx, draftID, format)
	})
}

// Save godoc
// @Summary Store a draft as a new timetable version
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	result, err := h.drafts.Save(c.Request.Context(), req)
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List stored timetables
// @Tags Timetable
// @Produce json
// @Param termId query string false "Term ID"
// @Param section query string false "Section"
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable query"))
		return
	}
	items, err := h.drafts.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Open godoc
// @Summary Open a stored timetable as a draft
// @Tags Timetable
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 201 {object} response.Envelope
// @Router /timetables/{id}/open [post]
func (h *TimetableHandler) Open(c *gin.Context) {
	draft, err := h.drafts.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// Publish godoc
// @Summary Publish a stored timetable
// @Description Archives the previously published version of the same term and section.
// @Tags Timetable
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	item, err := h.drafts.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a stored draft timetable
// @Tags Timetable
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *TimetableHandler) writeExport(c *gin.Context, render func(ctx context.Context) (*service.ExportResult, error)) {
	result, err := render(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.ContentType, result.Filename, result.Payload)
}

// respondPlacementError adds the coordinates of a rejected placement to the error envelope.
func respondPlacementError(c *gin.Context, err error) {
	if detail, ok := timetable.ConflictDetail(err); ok {
		response.Error(c, err, map[string]interface{}{"conflict": detail})
		return
	}
	response.Error(c, err)
}
