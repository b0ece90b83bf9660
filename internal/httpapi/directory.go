package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

func (h *handler) listEmployees(c *gin.Context) {
	es, err := h.svc.Employees.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployees(es))
}

func (h *handler) upsertEmployee(c *gin.Context) {
	if r := actorOf(c).Role; r != domain.RoleAdmin && r != domain.RoleManager {
		h.fail(c, fmt.Errorf("%w: only administrators and managers edit the directory", domain.ErrForbidden))
		return
	}
	var req employeeJSON
	if !h.bind(c, &req) {
		return
	}
	e := req.toDomain(c.Param("id"))
	if err := h.svc.Employees.Upsert(c.Request.Context(), e); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployee(e))
}

type eventRequest struct {
	EmployeeID string         `json:"employee_id"`
	Type       domain.Trigger `json:"type"`
	Snapshot   *employeeJSON  `json:"snapshot"`
	OccurredAt *time.Time     `json:"occurred_at"`
}

func (r eventRequest) toDomain() domain.EmployeeEvent {
	ev := domain.EmployeeEvent{EmployeeID: r.EmployeeID, Type: r.Type}
	if r.Snapshot != nil {
		id := r.Snapshot.ID
		if id == "" {
			id = r.EmployeeID
		}
		ev.Snapshot = r.Snapshot.toDomain(id)
	}
	if r.OccurredAt != nil {
		ev.OccurredAt = *r.OccurredAt
	}
	return ev
}

func (h *handler) handleEvent(c *gin.Context) {
	var req eventRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.AutoAssign.HandleEvent(c.Request.Context(), req.toDomain())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreview(p))
}

func (h *handler) previewEvent(c *gin.Context) {
	var req eventRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.AutoAssign.Preview(c.Request.Context(), req.toDomain())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreview(p))
}

func (h *handler) testRule(c *gin.Context) {
	var rule domain.AutoAssignRule
	if !h.bind(c, &rule) {
		return
	}
	res, err := h.svc.AutoAssign.TestRule(c.Request.Context(), rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rule":    res.Rule,
		"scanned": res.Scanned,
		"matches": toEmployees(res.Matches),
	})
}

func (h *handler) sweep(c *gin.Context) {
	if r := actorOf(c).Role; r != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators trigger sweeps", domain.ErrForbidden))
		return
	}
	var req struct {
		Now        *time.Time `json:"now"`
		TemplateID string     `json:"template_id"`
		DryRun     bool       `json:"dry_run"`
	}
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	in := contract.NewSweepRequest()
	in.Now = req.Now
	in.TemplateID = req.TemplateID
	in.DryRun = req.DryRun
	report, err := h.svc.Escalation.Sweep(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReport(report))
}
