package contract

import "github.com/alexanderramin/docket/internal/app"

type TemplateStats = app.TemplateStats

type RulePreview = app.RulePreview

type RuleTestResult = app.RuleTestResult

type ImportResult = app.ImportResult
