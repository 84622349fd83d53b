package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/events"
	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/pkg/api"
)

var (
	errNoDues           = errors.New("user has no pending dues")
	errNonPositive      = errors.New("amount must be positive")
	errNegativeMeal     = errors.New("meal counts cannot be negative")
	errMissingCategory  = errors.New("category is required")
	errSelfReminder     = errors.New("cannot remind yourself")
	errInvalidMonthPair = errors.New("year and month must be set together")
)

// LedgerService implements the Connect LedgerService: recording expenses,
// funds and meals, and computing dashboards and monthly archives.
type LedgerService struct {
	store    storage.Store
	notifier *events.Notifier
	messages events.Messages
	metrics  *metrics.Metrics
	options  calculator.Options
	now      func() time.Time
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithMetrics records ledger computations in m.
func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(s *LedgerService) { s.metrics = m }
}

// WithCalculatorOptions sets the allocation policy.
func WithCalculatorOptions(opts calculator.Options) LedgerOption {
	return func(s *LedgerService) { s.options = opts }
}

// WithCurrency sets the label used in notification texts.
func WithCurrency(label string) LedgerOption {
	return func(s *LedgerService) { s.messages.Currency = label }
}

// WithClock replaces time.Now for default dates and the current month.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

// NewLedgerService creates a LedgerService. A nil notifier records
// notifications in store and publishes nothing.
func NewLedgerService(store storage.Store, notifier *events.Notifier, opts ...LedgerOption) *LedgerService {
	if notifier == nil {
		notifier = events.NewNotifier(store, nil, nil)
	}
	s := &LedgerService{
		store:    store,
		notifier: notifier,
		messages: events.Messages{Currency: "BDT"},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) today() models.Date {
	t := s.now()
	return models.NewDate(t.Year(), t.Month(), t.Day())
}

// month resolves a year/month pair, defaulting to the current month when
// both are zero.
func (s *LedgerService) month(year, month int) (models.Month, error) {
	if year == 0 && month == 0 {
		return s.today().MonthOf(), nil
	}
	if year == 0 || month == 0 {
		return models.Month{}, connect.NewError(connect.CodeInvalidArgument, errInvalidMonthPair)
	}
	m, err := models.NewMonth(year, month)
	if err != nil {
		return models.Month{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return m, nil
}

func validateCounts(counts ...decimal.Decimal) error {
	for _, c := range counts {
		if c.IsNegative() {
			return connect.NewError(connect.CodeInvalidArgument, errNegativeMeal)
		}
	}
	return nil
}

// AddExpense records a purchase and notifies the other members.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("AddExpense", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("AddExpense request received",
		"group_id", groupID,
		"amount", req.Msg.Amount,
		"category", req.Msg.Category,
	)

	if req.Msg.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNonPositive)
	}
	category := strings.TrimSpace(req.Msg.Category)
	if category == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingCategory)
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("AddExpense", err, "group_id", groupID)
	}
	payer, err := entryOwner(members, req.Msg.UserID, access.caller.UserID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:  groupID,
		UserID:   payer.UserID,
		Amount:   req.Msg.Amount,
		Category: category,
		Date:     req.Msg.Date,
		Items:    strings.TrimSpace(req.Msg.Items),
	}
	if expense.Date.IsZero() {
		expense.Date = s.today()
	}
	if err := s.store.AddExpense(ctx, expense); err != nil {
		return nil, fail("AddExpense", err, "group_id", groupID)
	}

	names := models.MemberNames(members)
	out := toAPIExpense(*expense, names)
	slog.Info("Expense added", "group_id", groupID, "expense_id", expense.ID)
	emit(ctx, s.notifier, events.TypeExpenseAdded, groupID, access.caller.UserID, out,
		s.messages.ExpenseAdded(expense.Amount, payer.Name, expense.Category),
		events.OtherMembers(members, payer.UserID)...)

	return connect.NewResponse(&api.AddExpenseResponse{Expense: out}), nil
}

// AddFund records cash handed to the manager and notifies the other members.
func (s *LedgerService) AddFund(ctx context.Context, req *connect.Request[api.AddFundRequest]) (*connect.Response[api.AddFundResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("AddFund", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("AddFund request received", "group_id", groupID, "amount", req.Msg.Amount)

	if req.Msg.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNonPositive)
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("AddFund", err, "group_id", groupID)
	}
	depositor, err := entryOwner(members, req.Msg.UserID, access.caller.UserID)
	if err != nil {
		return nil, err
	}

	fund := &models.Fund{
		GroupID: groupID,
		UserID:  depositor.UserID,
		Amount:  req.Msg.Amount,
		Date:    req.Msg.Date,
	}
	if fund.Date.IsZero() {
		fund.Date = s.today()
	}
	if err := s.store.AddFund(ctx, fund); err != nil {
		return nil, fail("AddFund", err, "group_id", groupID)
	}

	out := toAPIFund(*fund, models.MemberNames(members))
	slog.Info("Fund added", "group_id", groupID, "fund_id", fund.ID)
	emit(ctx, s.notifier, events.TypeFundAdded, groupID, access.caller.UserID, out,
		s.messages.FundAdded(fund.Amount, depositor.Name),
		events.OtherMembers(members, depositor.UserID)...)

	return connect.NewResponse(&api.AddFundResponse{Fund: out}), nil
}

// UpdateFund corrects the amount or date of a deposit.
func (s *LedgerService) UpdateFund(ctx context.Context, req *connect.Request[api.UpdateFundRequest]) (*connect.Response[api.UpdateFundResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("UpdateFund", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("UpdateFund request received", "group_id", groupID, "fund_id", req.Msg.FundID)

	fund, err := s.store.GetFund(ctx, groupID, req.Msg.FundID)
	if err != nil {
		return nil, fail("UpdateFund", err, "group_id", groupID)
	}
	if req.Msg.Amount != nil {
		if *req.Msg.Amount <= 0 {
			return nil, connect.NewError(connect.CodeInvalidArgument, errNonPositive)
		}
		fund.Amount = *req.Msg.Amount
	}
	if req.Msg.Date != nil && !req.Msg.Date.IsZero() {
		fund.Date = *req.Msg.Date
	}
	if err := s.store.UpdateFund(ctx, fund); err != nil {
		return nil, fail("UpdateFund", err, "group_id", groupID)
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("UpdateFund", err, "group_id", groupID)
	}
	out := toAPIFund(*fund, models.MemberNames(members))
	emit(ctx, s.notifier, events.TypeFundUpdated, groupID, access.caller.UserID, out, "")

	return connect.NewResponse(&api.UpdateFundResponse{Fund: out}), nil
}

// AddMeal records one member's meals for a day.
func (s *LedgerService) AddMeal(ctx context.Context, req *connect.Request[api.AddMealRequest]) (*connect.Response[api.AddMealResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("AddMeal", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("AddMeal request received", "group_id", groupID, "date", req.Msg.Date)

	msg := req.Msg
	if err := validateCounts(msg.Breakfast, msg.Lunch, msg.Dinner, msg.GuestMealCount); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("AddMeal", err, "group_id", groupID)
	}
	eater, err := entryOwner(members, msg.UserID, access.caller.UserID)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{
		GroupID:        groupID,
		UserID:         eater.UserID,
		Date:           msg.Date,
		Breakfast:      msg.Breakfast,
		Lunch:          msg.Lunch,
		Dinner:         msg.Dinner,
		GuestMealCount: msg.GuestMealCount,
	}
	if meal.Date.IsZero() {
		meal.Date = s.today()
	}
	if err := s.store.AddMeal(ctx, meal); err != nil {
		return nil, fail("AddMeal", err, "group_id", groupID)
	}

	out := toAPIMeal(*meal, models.MemberNames(members))
	emit(ctx, s.notifier, events.TypeMealAdded, groupID, access.caller.UserID, out, "")

	return connect.NewResponse(&api.AddMealResponse{Meal: out}), nil
}

// UpdateMeal changes the counts present in the request and keeps the rest.
func (s *LedgerService) UpdateMeal(ctx context.Context, req *connect.Request[api.UpdateMealRequest]) (*connect.Response[api.UpdateMealResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("UpdateMeal", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("UpdateMeal request received", "group_id", groupID, "meal_id", req.Msg.MealID)

	meal, err := s.store.GetMeal(ctx, groupID, req.Msg.MealID)
	if err != nil {
		return nil, fail("UpdateMeal", err, "group_id", groupID)
	}

	for _, field := range []struct {
		value *decimal.Decimal
		dst   *decimal.Decimal
	}{
		{req.Msg.Breakfast, &meal.Breakfast},
		{req.Msg.Lunch, &meal.Lunch},
		{req.Msg.Dinner, &meal.Dinner},
		{req.Msg.GuestMealCount, &meal.GuestMealCount},
	} {
		if field.value == nil {
			continue
		}
		if err := validateCounts(*field.value); err != nil {
			return nil, err
		}
		*field.dst = *field.value
	}

	if err := s.store.UpdateMeal(ctx, meal); err != nil {
		return nil, fail("UpdateMeal", err, "group_id", groupID)
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("UpdateMeal", err, "group_id", groupID)
	}
	out := toAPIMeal(*meal, models.MemberNames(members))
	emit(ctx, s.notifier, events.TypeMealUpdated, groupID, access.caller.UserID, out, "")

	return connect.NewResponse(&api.UpdateMealResponse{Meal: out}), nil
}

// snapshot loads everything recorded for a group.
func (s *LedgerService) snapshot(ctx context.Context, groupID string) (models.Snapshot, error) {
	return storage.LoadSnapshot(ctx, s.store, groupID)
}

// GetDashboard returns all-time balances and settlements plus the figures of
// one month.
func (s *LedgerService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetDashboard", err, "group_id", req.Msg.GroupID)
	}
	month, err := s.month(req.Msg.Year, req.Msg.Month)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snap, err := s.snapshot(ctx, access.group.ID)
	if err != nil {
		return nil, fail("GetDashboard", err, "group_id", access.group.ID)
	}
	ledger := calculator.ComputeLedger(snap, s.options)
	stats := calculator.ComputeMonthStats(snap, month)
	s.metrics.ObserveLedger("dashboard", start)

	names := models.MemberNames(snap.Members)
	resp := &api.GetDashboardResponse{
		Group:       toAPIGroup(&snap.Group, snap.Members),
		Summary:     toAPISummary(ledger.Summary),
		Balances:    toAPIBalances(ledger.Balances),
		Settlements: toAPISettlements(ledger.Settlements),
		ThisMonth:   toAPIMonthStats(stats, names),
		Expenses:    make([]*api.Expense, len(snap.Expenses)),
		Funds:       make([]*api.Fund, len(snap.Funds)),
		Meals:       make([]*api.Meal, len(snap.Meals)),
	}
	for i, e := range snap.Expenses {
		resp.Expenses[i] = toAPIExpense(e, names)
	}
	for i, f := range snap.Funds {
		resp.Funds[i] = toAPIFund(f, names)
	}
	for i, m := range snap.Meals {
		resp.Meals[i] = toAPIMeal(m, names)
	}

	slog.Debug("GetDashboard successful",
		"group_id", access.group.ID,
		"members", len(snap.Members),
		"settlements", len(ledger.Settlements),
	)
	return connect.NewResponse(resp), nil
}

// LoadArchive computes the closed-book view of month for a group the caller
// belongs to. Errors carry a Connect code.
func (s *LedgerService) LoadArchive(ctx context.Context, groupID string, month models.Month) (*models.Group, calculator.Archive, error) {
	access, err := membersOnly(ctx, s.store, groupID)
	if err != nil {
		return nil, calculator.Archive{}, toConnectError(err)
	}

	start := time.Now()
	snap, err := s.snapshot(ctx, access.group.ID)
	if err != nil {
		return nil, calculator.Archive{}, toConnectError(err)
	}
	archive := calculator.ComputeArchive(snap, month, s.options)
	s.metrics.ObserveLedger("archive", start)
	return &snap.Group, archive, nil
}

// GetArchive returns balances and settlements computed from one month only.
func (s *LedgerService) GetArchive(ctx context.Context, req *connect.Request[api.GetArchiveRequest]) (*connect.Response[api.GetArchiveResponse], error) {
	month, err := models.NewMonth(req.Msg.Year, req.Msg.Month)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	_, archive, err := s.LoadArchive(ctx, req.Msg.GroupID, month)
	if err != nil {
		return nil, fail("GetArchive", err, "group_id", req.Msg.GroupID)
	}

	names := make(map[string]string)
	for _, um := range archive.PerUserMeals {
		names[um.UserID] = um.Name
	}
	for _, b := range archive.Balances {
		names[b.UserID] = b.Name
	}

	resp := &api.GetArchiveResponse{
		Month:        archive.Month.Key(),
		GroupType:    string(archive.GroupType),
		Summary:      toAPISummary(archive.Summary),
		Balances:     toAPIBalances(archive.Balances),
		Settlements:  toAPISettlements(archive.Settlements),
		PerUserMeals: toAPIUserMeals(archive.PerUserMeals, names, true),
		Funds:        make([]*api.Fund, len(archive.Funds)),
		Expenses:     make([]*api.Expense, len(archive.Expenses)),
	}
	for i, f := range archive.Funds {
		resp.Funds[i] = toAPIFund(f, names)
	}
	for i, e := range archive.Expenses {
		resp.Expenses[i] = toAPIExpense(e, names)
	}
	return connect.NewResponse(resp), nil
}

// SendReminder notifies a member who owes money.
func (s *LedgerService) SendReminder(ctx context.Context, req *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("SendReminder", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	debtorID := strings.TrimSpace(req.Msg.UserID)
	slog.Info("SendReminder request received", "group_id", groupID, "user_id", debtorID)

	if debtorID == access.caller.UserID {
		return nil, connect.NewError(connect.CodeInvalidArgument, errSelfReminder)
	}

	start := time.Now()
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, fail("SendReminder", err, "group_id", groupID)
	}
	if _, ok := findMember(snap.Members, debtorID); !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errPayeeAbsent)
	}
	ledger := calculator.ComputeLedger(snap, s.options)
	s.metrics.ObserveLedger("reminder", start)

	owes := false
	for _, b := range ledger.Balances {
		if b.UserID == debtorID {
			owes = b.Balance < -money.Epsilon
			break
		}
	}
	if !owes {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoDues)
	}

	emit(ctx, s.notifier, events.TypeReminderSent, groupID, access.caller.UserID,
		map[string]string{"user_id": debtorID},
		s.messages.Reminder(access.group.DisplayName), debtorID)

	slog.Info("Reminder sent", "group_id", groupID, "user_id", debtorID)
	return connect.NewResponse(&api.SendReminderResponse{}), nil
}
