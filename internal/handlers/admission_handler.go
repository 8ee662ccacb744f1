package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/admission"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/models"
	"github.com/ttifoundation/admission-backend/internal/services"
)

type AdmissionHandler struct {
	admissionService *services.AdmissionService
}

func NewAdmissionHandler(admissionService *services.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissionService: admissionService}
}

// Submit handles the public multipart admission form: six named file fields
// plus the text fields.
func (h *AdmissionHandler) Submit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "multipart form required"})
	}

	declaration := strings.ToLower(c.FormValue("declaration"))
	in := &services.SubmitInput{
		Name:                   c.FormValue("name"),
		Email:                  c.FormValue("email"),
		Mobile:                 c.FormValue("mobile"),
		DOB:                    c.FormValue("dob"),
		Gender:                 c.FormValue("gender"),
		State:                  c.FormValue("state"),
		District:               c.FormValue("district"),
		Course:                 c.FormValue("course"),
		DisabilityStatus:       c.FormValue("disabilityStatus"),
		Education:              c.FormValue("education"),
		EnrolledCourse:         c.FormValue("enrolledCourse"),
		BasicComputerKnowledge: c.FormValue("basicComputerKnowledge"),
		BasicEnglishSkills:     c.FormValue("basicEnglishSkills"),
		ScreenReaderKnowledge:  c.FormValue("screenReaderKnowledge"),
		Declaration:            declaration == "true" || declaration == "on" || declaration == "1",
		Documents:              documentsFromForm(form),
	}

	rec, err := h.admissionService.Submit(c.Context(), in)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AdmissionResponse{
		Message: "Admission submitted successfully",
		Data:    rec,
	})
}

func documentsFromForm(form *multipart.Form) map[string]services.DocumentFile {
	docs := make(map[string]services.DocumentFile, len(services.DocumentFields))
	for _, field := range services.DocumentFields {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		docs[field] = services.DocumentFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return docs
}

func (h *AdmissionHandler) listHandler(statuses ...admission.Status) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := actor.FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
		}
		records, err := h.admissionService.ListByStatuses(a, statuses...)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(records)
	}
}

func (h *AdmissionHandler) Submitted() fiber.Handler {
	return h.listHandler(admission.StatusSubmitted)
}

func (h *AdmissionHandler) HeadAccepted() fiber.Handler {
	return h.listHandler(admission.StatusHeadAccepted)
}

func (h *AdmissionHandler) HeadRejected() fiber.Handler {
	return h.listHandler(admission.StatusHeadRejected)
}

func (h *AdmissionHandler) TeacherAccepted() fiber.Handler {
	return h.listHandler(admission.StatusSelected)
}

func (h *AdmissionHandler) TeacherRejected() fiber.Handler {
	return h.listHandler(admission.StatusRejected)
}

// InterviewRequired lists records waiting on or already holding an
// interview slot.
func (h *AdmissionHandler) InterviewRequired() fiber.Handler {
	return h.listHandler(admission.StatusHeadAccepted, admission.StatusInterviewScheduled)
}

func (h *AdmissionHandler) Dashboard(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
	resp, err := h.admissionService.Dashboard(a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdmissionHandler) HeadApprove(c *fiber.Ctx) error {
	return h.transition(c, "Admission approved by head", h.admissionService.HeadApprove)
}

func (h *AdmissionHandler) HeadReject(c *fiber.Ctx) error {
	return h.transition(c, "Admission rejected by head", h.admissionService.HeadReject)
}

func (h *AdmissionHandler) HeadDelete(c *fiber.Ctx) error {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return nil
	}

	var req dto.DeleteAdmissionRequest
	// The delete body is optional; a missing reason is fine.
	_ = c.BodyParser(&req)

	rec, svcErr := h.admissionService.HeadDelete(a, id, req.Reason)
	if svcErr != nil {
		return writeServiceError(c, svcErr)
	}
	return c.JSON(dto.AdmissionResponse{Message: "Admission deleted", Data: rec})
}

func (h *AdmissionHandler) ScheduleInterview(c *fiber.Ctx) error {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return nil
	}

	var req dto.ScheduleInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "invalid request body"})
	}

	rec, svcErr := h.admissionService.ScheduleInterview(a, id, &req)
	if svcErr != nil {
		return writeServiceError(c, svcErr)
	}
	return c.JSON(dto.AdmissionResponse{Message: "Interview scheduled", Data: rec})
}

func (h *AdmissionHandler) FinalApprove(c *fiber.Ctx) error {
	return h.transition(c, "Final approval complete", h.admissionService.FinalApprove)
}

func (h *AdmissionHandler) FinalReject(c *fiber.Ctx) error {
	return h.transition(c, "Final rejection complete", h.admissionService.FinalReject)
}

func (h *AdmissionHandler) transition(c *fiber.Ctx, message string, apply func(actor.Actor, uuid.UUID) (*models.Admission, error)) error {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return nil
	}
	rec, err := apply(a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.AdmissionResponse{Message: message, Data: rec})
}

// actorAndID pulls the actor and the :id path param, writing the error
// response itself when either is missing. Unparseable ids read as not found
// so probing with junk ids leaks nothing.
func (h *AdmissionHandler) actorAndID(c *fiber.Ctx) (actor.Actor, uuid.UUID, bool) {
	a, err := actor.FromCtx(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
		return actor.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not_found", Detail: "admission not found"})
		return actor.Actor{}, uuid.Nil, false
	}
	return a, id, true
}
