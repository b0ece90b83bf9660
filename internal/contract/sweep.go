package contract

import (
	"github.com/alexanderramin/docket/internal/app"
	"github.com/alexanderramin/docket/internal/domain"
)

type SweepRequest = app.SweepRequest

func NewSweepRequest() SweepRequest {
	return app.NewSweepRequest()
}

type SweepActionKind = app.SweepActionKind

const (
	SweepSend          SweepActionKind = app.SweepSend
	SweepRemind        SweepActionKind = app.SweepRemind
	SweepNotifyManager SweepActionKind = app.SweepNotifyManager
	SweepNotifyHR      SweepActionKind = app.SweepNotifyHR
	SweepMarkRefused   SweepActionKind = app.SweepMarkRefused
	SweepLapse         SweepActionKind = app.SweepLapse
	SweepRenew         SweepActionKind = app.SweepRenew
)

func SweepActionForStep(a domain.EscalationAction) SweepActionKind {
	return app.SweepActionForStep(a)
}

type SweepAction = app.SweepAction

type SweepFailure = app.SweepFailure

type SweepReport = app.SweepReport
