package contract

import (
	"github.com/alexanderramin/docket/internal/app"
	"github.com/alexanderramin/docket/internal/domain"
)

type CreateAssignmentRequest = app.CreateAssignmentRequest

func NewCreateAssignmentRequest(templateID string, actor domain.Actor, recipientIDs ...string) CreateAssignmentRequest {
	return app.NewCreateAssignmentRequest(templateID, actor, recipientIDs...)
}

type CreateAssignmentResult = app.CreateAssignmentResult

type AssignmentView = app.AssignmentView

type AssignmentHistory = app.AssignmentHistory

type ListFilter = app.ListFilter
