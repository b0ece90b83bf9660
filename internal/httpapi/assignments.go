package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

type contractFilter struct {
	Statuses    []string `form:"status"`
	Freshness   string   `form:"freshness"`
	RecipientID string   `form:"recipient"`
}

func (f contractFilter) toContract() contract.ListFilter {
	out := contract.ListFilter{Freshness: domain.Freshness(f.Freshness), RecipientID: f.RecipientID}
	for _, s := range f.Statuses {
		out.Statuses = append(out.Statuses, domain.Status(s))
	}
	return out
}

type createAssignmentRequest struct {
	TemplateID   string           `json:"template_id" binding:"required"`
	RecipientIDs []string         `json:"recipient_ids"`
	ScheduleAt   *time.Time       `json:"schedule_at"`
	DueAt        *time.Time       `json:"due_at"`
	Channels     []domain.Channel `json:"channels"`
	Note         string           `json:"note"`
}

type submitRequest struct {
	DocumentRef string            `json:"document_ref"`
	Values      map[string]string `json:"values"`
	Signature   *domain.Signature `json:"signature"`
	ValidUntil  *time.Time        `json:"valid_until"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

func (h *handler) createAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if !h.bind(c, &req) {
		return
	}
	in := contract.NewCreateAssignmentRequest(req.TemplateID, actorOf(c), req.RecipientIDs...)
	in.ScheduleAt = req.ScheduleAt
	in.DueAt = req.DueAt
	in.Note = req.Note
	if req.Channels != nil {
		in.Channels = req.Channels
	}
	res, err := h.svc.Assignments.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"instance_id":   res.Instance.ID,
		"assignments":   toAssignments(res.Assignments),
		"notify_errors": res.NotifyErrors,
	})
}

func (h *handler) schedule(c *gin.Context) {
	var req struct {
		At time.Time `json:"at" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.svc.Assignments.Schedule(c.Request.Context(), c.Param("id"), actorOf(c), req.At))
}

func (h *handler) send(c *gin.Context) {
	h.respond(c)(h.svc.Assignments.Send(c.Request.Context(), c.Param("id"), actorOf(c)))
}

func (h *handler) submit(c *gin.Context) {
	var req submitRequest
	if !h.bind(c, &req) {
		return
	}
	sub := domain.Submission{
		DocumentRef: req.DocumentRef,
		Values:      req.Values,
		Signature:   req.Signature,
		ValidUntil:  req.ValidUntil,
	}
	if sub.Signature != nil && sub.Signature.IPAddress == "" {
		sub.Signature.IPAddress = c.ClientIP()
	}
	h.respond(c)(h.svc.Assignments.Submit(c.Request.Context(), c.Param("id"), actorOf(c), sub))
}

func (h *handler) approve(c *gin.Context) {
	var req reasonRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.svc.Assignments.Approve(c.Request.Context(), c.Param("id"), actorOf(c), req.Note))
}

func (h *handler) reject(c *gin.Context) {
	var req reasonRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.svc.Assignments.Reject(c.Request.Context(), c.Param("id"), actorOf(c), req.Reason))
}

func (h *handler) decline(c *gin.Context) {
	var req reasonRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.svc.Assignments.Decline(c.Request.Context(), c.Param("id"), actorOf(c), req.Reason))
}

func (h *handler) cancel(c *gin.Context) {
	var req reasonRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	h.respond(c)(h.svc.Assignments.Cancel(c.Request.Context(), c.Param("id"), actorOf(c), req.Reason))
}

func (h *handler) remind(c *gin.Context) {
	var req struct {
		Channels []domain.Channel `json:"channels"`
	}
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	if req.Channels == nil {
		req.Channels = []domain.Channel{domain.ChannelEmail}
	}
	h.respond(c)(h.svc.Assignments.Remind(c.Request.Context(), c.Param("id"), actorOf(c), req.Channels))
}

// respond writes the outcome of a single-assignment command.
func (h *handler) respond(c *gin.Context) func(*domain.Assignment, error) {
	return func(a *domain.Assignment, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toAssignment(a))
	}
}

func (h *handler) getAssignment(c *gin.Context) {
	v, err := h.svc.Directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(*v))
}

func (h *handler) assignmentHistory(c *gin.Context) {
	hist, err := h.svc.Directory.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistory(hist))
}
