package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/repository"
	"github.com/alexanderramin/docket/internal/testutil"
)

var (
	day0  = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	admin = domain.Actor{ID: "admin", Role: domain.RoleAdmin}
	rev   = domain.Actor{ID: "rev-1", Role: domain.RoleReviewer}
)

// mockNotifier records notifications and returns whatever the test set up.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, n domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

// sent returns the notifications of the given kind delivered so far.
func (m *mockNotifier) sent(kind string) []domain.Notification {
	var out []domain.Notification
	for _, c := range m.Calls {
		if n := c.Arguments.Get(1).(domain.Notification); n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type harness struct {
	db       *sql.DB
	uow      db.UnitOfWork
	clock    *clock.Fixed
	notifier *mockNotifier
	metrics  *metrics.Recorder

	templateRepo   repository.TemplateRepo
	employeeRepo   repository.EmployeeRepo
	assignmentRepo repository.AssignmentRepo

	templates   TemplateService
	employees   EmployeeService
	assignments AssignmentService
	escalation  EscalationService
	autoAssign  AutoAssignService
	directory   DirectoryService
	imports     ImportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, testutil.NewTestDB(t), nil)
}

// newHarnessWith builds every service over database. uow overrides the unit
// of work used by the services when set.
func newHarnessWith(t *testing.T, database *sql.DB, uow db.UnitOfWork) *harness {
	t.Helper()
	if uow == nil {
		uow = testutil.NewTestUoW(database)
	}
	h := &harness{
		db:             database,
		uow:            uow,
		clock:          clock.NewFixed(day0),
		notifier:       &mockNotifier{},
		metrics:        metrics.New(),
		templateRepo:   repository.NewSQLiteTemplateRepo(database),
		employeeRepo:   repository.NewSQLiteEmployeeRepo(database),
		assignmentRepo: repository.NewSQLiteAssignmentRepo(database),
	}
	h.notifier.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()

	log := zerolog.Nop()
	dispatcher := NewDispatcher(h.notifier, testutil.NewTestUoW(database), h.clock, log, h.metrics, nil)
	instances := repository.NewSQLiteInstanceRepo(database)
	transitions := repository.NewSQLiteTransitionRepo(database)
	notifications := repository.NewSQLiteNotificationRepo(database)

	h.templates = NewTemplateService(h.templateRepo, uow, h.clock)
	h.employees = NewEmployeeService(h.employeeRepo, h.clock)
	h.assignments = NewAssignmentService(h.employeeRepo, uow, h.clock, dispatcher, h.metrics)
	h.escalation = NewEscalationService(h.templateRepo, h.assignmentRepo, h.employeeRepo, uow, h.clock, dispatcher, h.metrics, log)
	h.autoAssign = NewAutoAssignService(h.templateRepo, h.employeeRepo, h.assignmentRepo, uow, h.clock, dispatcher, h.metrics)
	h.directory = NewDirectoryService(h.templateRepo, h.employeeRepo, instances, h.assignmentRepo, transitions, notifications, h.clock)
	h.imports = NewImportService(uow, h.clock)
	return h
}

// failNotifications makes every later delivery fail with err.
func (h *harness) failNotifications(err error) {
	h.notifier.ExpectedCalls = nil
	h.notifier.On("Send", mock.Anything, mock.Anything).Return(err)
}

func (h *harness) template(t *testing.T, name string, opts ...testutil.TemplateOption) *domain.Template {
	t.Helper()
	tpl := testutil.NewTestTemplate(name, opts...)
	require.NoError(t, h.templates.Create(context.Background(), tpl))
	return tpl
}

func (h *harness) employee(t *testing.T, name string, opts ...testutil.EmployeeOption) *domain.Employee {
	t.Helper()
	e := testutil.NewTestEmployee(name, opts...)
	require.NoError(t, h.employees.Upsert(context.Background(), e))
	return e
}

// assign sends tpl to one recipient now and returns the assignment.
func (h *harness) assign(t *testing.T, tpl *domain.Template, e *domain.Employee) *domain.Assignment {
	t.Helper()
	res, err := h.assignments.Create(context.Background(), contract.NewCreateAssignmentRequest(tpl.ID, admin, e.ID))
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	return res.Assignments[0]
}

func (h *harness) reload(t *testing.T, id string) *domain.Assignment {
	t.Helper()
	a, err := h.assignmentRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (h *harness) sweep(t *testing.T) *contract.SweepReport {
	t.Helper()
	rep, err := h.escalation.Sweep(context.Background(), contract.NewSweepRequest())
	require.NoError(t, err)
	return rep
}
