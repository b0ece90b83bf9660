package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/importer"
)

func (h *handler) listTemplates(c *gin.Context) {
	archived, _ := strconv.ParseBool(c.Query("archived"))
	ts, err := h.svc.Templates.List(c.Request.Context(), archived)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]templateJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTemplate(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getTemplate(c *gin.Context) {
	t, err := h.svc.Templates.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplate(t))
}

// createTemplate accepts the same shape as one entry of an import catalog.
func (h *handler) createTemplate(c *gin.Context) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	var req importer.TemplateImport
	if !h.bind(c, &req) {
		return
	}
	catalog := &importer.Catalog{Templates: []importer.TemplateImport{req}}
	if errs := importer.ValidateCatalog(catalog); len(errs) > 0 {
		h.fail(c, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...)))
		return
	}
	t := importer.Convert(catalog, h.svc.Clock.Now()).Templates[0]
	if err := h.svc.Templates.Create(c.Request.Context(), t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTemplate(t))
}

func (h *handler) archiveTemplate(c *gin.Context) {
	h.toggleArchive(c, true)
}

func (h *handler) unarchiveTemplate(c *gin.Context) {
	h.toggleArchive(c, false)
}

func (h *handler) toggleArchive(c *gin.Context, archive bool) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	var err error
	if archive {
		err = h.svc.Templates.Archive(ctx, id)
	} else {
		err = h.svc.Templates.Unarchive(ctx, id)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.svc.Templates.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplate(t))
}

func (h *handler) editPolicy(c *gin.Context) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	var req struct {
		Steps domain.EscalationPolicy `json:"steps"`
	}
	if !h.bind(c, &req) {
		return
	}
	t, err := h.svc.Templates.EditEscalationPolicy(c.Request.Context(), c.Param("id"), req.Steps)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplate(t))
}

func (h *handler) editRules(c *gin.Context) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	var req struct {
		Rules []domain.AutoAssignRule `json:"rules"`
	}
	if !h.bind(c, &req) {
		return
	}
	t, err := h.svc.Templates.EditAutoAssignRules(c.Request.Context(), c.Param("id"), req.Rules)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplate(t))
}

func (h *handler) upsertRule(c *gin.Context) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	var rule domain.AutoAssignRule
	if !h.bind(c, &rule) {
		return
	}
	saved, err := h.svc.Templates.UpsertRule(c.Request.Context(), c.Param("id"), rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handler) removeRule(c *gin.Context) {
	if actorOf(c).Role != domain.RoleAdmin {
		h.fail(c, fmt.Errorf("%w: only administrators manage templates", domain.ErrForbidden))
		return
	}
	if err := h.svc.Templates.RemoveRule(c.Request.Context(), c.Param("id"), c.Param("ruleID")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listAssignments(c *gin.Context) {
	var filter contractFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	views, err := h.svc.Directory.ListAssignments(c.Request.Context(), c.Param("id"), filter.toContract())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]viewJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toView(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) listInstances(c *gin.Context) {
	instances, err := h.svc.Directory.ListInstances(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(instances))
	for _, in := range instances {
		out = append(out, gin.H{
			"id":          in.ID,
			"template_id": in.TemplateID,
			"assigned_by": in.AssignedBy,
			"assigned_at": in.AssignedAt,
			"source":      in.Source,
			"trigger":     in.Trigger,
			"note":        in.Note,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) templateStats(c *gin.Context) {
	s, err := h.svc.Directory.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStats(*s))
}

func (h *handler) allStats(c *gin.Context) {
	archived, _ := strconv.ParseBool(c.Query("archived"))
	all, err := h.svc.Directory.AllStats(c.Request.Context(), archived)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]statsJSON, 0, len(all))
	for _, s := range all {
		out = append(out, toStats(s))
	}
	c.JSON(http.StatusOK, out)
}
