package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

const LedgerServiceName = "hisab.v1.LedgerService"

const (
	LedgerServiceAddExpenseProcedure   = "/hisab.v1.LedgerService/AddExpense"
	LedgerServiceAddFundProcedure      = "/hisab.v1.LedgerService/AddFund"
	LedgerServiceUpdateFundProcedure   = "/hisab.v1.LedgerService/UpdateFund"
	LedgerServiceAddMealProcedure      = "/hisab.v1.LedgerService/AddMeal"
	LedgerServiceUpdateMealProcedure   = "/hisab.v1.LedgerService/UpdateMeal"
	LedgerServiceGetDashboardProcedure = "/hisab.v1.LedgerService/GetDashboard"
	LedgerServiceGetArchiveProcedure   = "/hisab.v1.LedgerService/GetArchive"
	LedgerServiceSendReminderProcedure = "/hisab.v1.LedgerService/SendReminder"
)

// Balance status labels.
const (
	StatusOwes     = "Owes"
	StatusGetsBack = "Gets Back"
	StatusSettled  = "Settled"
)

type Expense struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	UserName string       `json:"user_name"`
	Amount   money.Amount `json:"amount"`
	Category string       `json:"category"`
	Date     models.Date  `json:"date"`
	Items    string       `json:"items,omitempty"`
}

type Fund struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	UserName string       `json:"user_name"`
	Amount   money.Amount `json:"amount"`
	Date     models.Date  `json:"date"`
}

type Meal struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name"`
	Date           models.Date     `json:"date"`
	Breakfast      decimal.Decimal `json:"breakfast"`
	Lunch          decimal.Decimal `json:"lunch"`
	Dinner         decimal.Decimal `json:"dinner"`
	GuestMealCount decimal.Decimal `json:"guest_meal_count"`
	Units          decimal.Decimal `json:"units"`
}

// Balance is one row of the dashboard. Balance > 0 means the user gets money back.
type Balance struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	IsMember   bool            `json:"is_member"`
	Paid       money.Amount    `json:"paid"`
	Deposited  money.Amount    `json:"deposited"`
	MealUnits  decimal.Decimal `json:"meal_units"`
	MealCost   money.Amount    `json:"meal_cost"`
	SharedCost money.Amount    `json:"shared_cost"`
	Balance    money.Amount    `json:"balance"`
	Status     string          `json:"status"`
}

type Settlement struct {
	FromID   string       `json:"from_id"`
	FromName string       `json:"from_name"`
	ToID     string       `json:"to_id"`
	ToName   string       `json:"to_name"`
	Amount   money.Amount `json:"amount"`
}

type Summary struct {
	MealRate       decimal.Decimal `json:"meal_rate"`
	TotalMeals     decimal.Decimal `json:"total_meals"`
	TotalBazar     money.Amount    `json:"total_bazar"`
	TotalFixed     money.Amount    `json:"total_fixed"`
	TotalMisc      money.Amount    `json:"total_misc"`
	TotalCost      money.Amount    `json:"total_cost"`
	TotalFunds     money.Amount    `json:"total_funds"`
	ManagerHolding money.Amount    `json:"manager_holding"`
	Unattributed   money.Amount    `json:"unattributed"`
}

type UserMeals struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Units  decimal.Decimal `json:"units"`
	Meals  []*Meal         `json:"meals,omitempty"`
}

type MonthStats struct {
	Month         string          `json:"month"` // YYYY-MM
	TotalBazar    money.Amount    `json:"total_bazar"`
	TotalCost     money.Amount    `json:"total_cost"`
	TotalMeals    decimal.Decimal `json:"total_meals"`
	MealRate      decimal.Decimal `json:"meal_rate"`
	PerMemberCost money.Amount    `json:"per_member_cost"`
	MemberMeals   []*UserMeals    `json:"member_meals"`
}

// AddExpenseRequest records a purchase. UserID defaults to the caller and
// Date to today.
type AddExpenseRequest struct {
	GroupID  string       `json:"group_id"`
	UserID   string       `json:"user_id,omitempty"`
	Amount   money.Amount `json:"amount"`
	Category string       `json:"category"`
	Date     models.Date  `json:"date,omitempty"`
	Items    string       `json:"items,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type AddFundRequest struct {
	GroupID string       `json:"group_id"`
	UserID  string       `json:"user_id,omitempty"`
	Amount  money.Amount `json:"amount"`
	Date    models.Date  `json:"date,omitempty"`
}

type AddFundResponse struct {
	Fund *Fund `json:"fund"`
}

// UpdateFundRequest changes the fields that are set.
type UpdateFundRequest struct {
	GroupID string        `json:"group_id"`
	FundID  string        `json:"fund_id"`
	Amount  *money.Amount `json:"amount,omitempty"`
	Date    *models.Date  `json:"date,omitempty"`
}

type UpdateFundResponse struct {
	Fund *Fund `json:"fund"`
}

type AddMealRequest struct {
	GroupID        string          `json:"group_id"`
	UserID         string          `json:"user_id,omitempty"`
	Date           models.Date     `json:"date,omitempty"`
	Breakfast      decimal.Decimal `json:"breakfast"`
	Lunch          decimal.Decimal `json:"lunch"`
	Dinner         decimal.Decimal `json:"dinner"`
	GuestMealCount decimal.Decimal `json:"guest_meal_count"`
}

type AddMealResponse struct {
	Meal *Meal `json:"meal"`
}

// UpdateMealRequest changes the counts that are set.
type UpdateMealRequest struct {
	GroupID        string           `json:"group_id"`
	MealID         string           `json:"meal_id"`
	Breakfast      *decimal.Decimal `json:"breakfast,omitempty"`
	Lunch          *decimal.Decimal `json:"lunch,omitempty"`
	Dinner         *decimal.Decimal `json:"dinner,omitempty"`
	GuestMealCount *decimal.Decimal `json:"guest_meal_count,omitempty"`
}

type UpdateMealResponse struct {
	Meal *Meal `json:"meal"`
}

// GetDashboardRequest selects the month used for ThisMonth. Zero values mean
// the current month.
type GetDashboardRequest struct {
	GroupID string `json:"group_id"`
	Year    int    `json:"year,omitempty"`
	Month   int    `json:"month,omitempty"`
}

type GetDashboardResponse struct {
	Group       *Group        `json:"group"`
	Summary     *Summary      `json:"summary"`
	Balances    []*Balance    `json:"balances"`
	Settlements []*Settlement `json:"settlements"`
	ThisMonth   *MonthStats   `json:"this_month"`

	// Raw entries, oldest first.
	Expenses []*Expense `json:"expenses"`
	Funds    []*Fund    `json:"funds"`
	Meals    []*Meal    `json:"meals"`
}

type GetArchiveRequest struct {
	GroupID string `json:"group_id"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
}

type GetArchiveResponse struct {
	Month        string        `json:"month"` // YYYY-MM
	GroupType    string        `json:"group_type"`
	Summary      *Summary      `json:"summary"`
	Balances     []*Balance    `json:"balances"`
	Settlements  []*Settlement `json:"settlements"`
	PerUserMeals []*UserMeals  `json:"per_user_meals"`
	Funds        []*Fund       `json:"funds"`
	Expenses     []*Expense    `json:"expenses"`
}

type SendReminderRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type SendReminderResponse struct{}

type LedgerServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	AddFund(context.Context, *connect.Request[AddFundRequest]) (*connect.Response[AddFundResponse], error)
	UpdateFund(context.Context, *connect.Request[UpdateFundRequest]) (*connect.Response[UpdateFundResponse], error)
	AddMeal(context.Context, *connect.Request[AddMealRequest]) (*connect.Response[AddMealResponse], error)
	UpdateMeal(context.Context, *connect.Request[UpdateMealRequest]) (*connect.Response[UpdateMealResponse], error)
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
	GetArchive(context.Context, *connect.Request[GetArchiveRequest]) (*connect.Response[GetArchiveResponse], error)
	SendReminder(context.Context, *connect.Request[SendReminderRequest]) (*connect.Response[SendReminderResponse], error)
}

func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceAddFundProcedure, connect.NewUnaryHandler(LedgerServiceAddFundProcedure, svc.AddFund, opts...))
	mux.Handle(LedgerServiceUpdateFundProcedure, connect.NewUnaryHandler(LedgerServiceUpdateFundProcedure, svc.UpdateFund, opts...))
	mux.Handle(LedgerServiceAddMealProcedure, connect.NewUnaryHandler(LedgerServiceAddMealProcedure, svc.AddMeal, opts...))
	mux.Handle(LedgerServiceUpdateMealProcedure, connect.NewUnaryHandler(LedgerServiceUpdateMealProcedure, svc.UpdateMeal, opts...))
	mux.Handle(LedgerServiceGetDashboardProcedure, connect.NewUnaryHandler(LedgerServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	mux.Handle(LedgerServiceGetArchiveProcedure, connect.NewUnaryHandler(LedgerServiceGetArchiveProcedure, svc.GetArchive, opts...))
	mux.Handle(LedgerServiceSendReminderProcedure, connect.NewUnaryHandler(LedgerServiceSendReminderProcedure, svc.SendReminder, opts...))
	return "/" + LedgerServiceName + "/", mux
}

type LedgerServiceClient struct {
	addExpense   *connect.Client[AddExpenseRequest, AddExpenseResponse]
	addFund      *connect.Client[AddFundRequest, AddFundResponse]
	updateFund   *connect.Client[UpdateFundRequest, UpdateFundResponse]
	addMeal      *connect.Client[AddMealRequest, AddMealResponse]
	updateMeal   *connect.Client[UpdateMealRequest, UpdateMealResponse]
	getDashboard *connect.Client[GetDashboardRequest, GetDashboardResponse]
	getArchive   *connect.Client[GetArchiveRequest, GetArchiveResponse]
	sendReminder *connect.Client[SendReminderRequest, SendReminderResponse]
}

func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		addExpense:   connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		addFund:      connect.NewClient[AddFundRequest, AddFundResponse](httpClient, baseURL+LedgerServiceAddFundProcedure, opts...),
		updateFund:   connect.NewClient[UpdateFundRequest, UpdateFundResponse](httpClient, baseURL+LedgerServiceUpdateFundProcedure, opts...),
		addMeal:      connect.NewClient[AddMealRequest, AddMealResponse](httpClient, baseURL+LedgerServiceAddMealProcedure, opts...),
		updateMeal:   connect.NewClient[UpdateMealRequest, UpdateMealResponse](httpClient, baseURL+LedgerServiceUpdateMealProcedure, opts...),
		getDashboard: connect.NewClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL+LedgerServiceGetDashboardProcedure, opts...),
		getArchive:   connect.NewClient[GetArchiveRequest, GetArchiveResponse](httpClient, baseURL+LedgerServiceGetArchiveProcedure, opts...),
		sendReminder: connect.NewClient[SendReminderRequest, SendReminderResponse](httpClient, baseURL+LedgerServiceSendReminderProcedure, opts...),
	}
}

func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddFund(ctx context.Context, req *connect.Request[AddFundRequest]) (*connect.Response[AddFundResponse], error) {
	return c.addFund.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateFund(ctx context.Context, req *connect.Request[UpdateFundRequest]) (*connect.Response[UpdateFundResponse], error) {
	return c.updateFund.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddMeal(ctx context.Context, req *connect.Request[AddMealRequest]) (*connect.Response[AddMealResponse], error) {
	return c.addMeal.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateMeal(ctx context.Context, req *connect.Request[UpdateMealRequest]) (*connect.Response[UpdateMealResponse], error) {
	return c.updateMeal.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetArchive(ctx context.Context, req *connect.Request[GetArchiveRequest]) (*connect.Response[GetArchiveResponse], error) {
	return c.getArchive.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SendReminder(ctx context.Context, req *connect.Request[SendReminderRequest]) (*connect.Response[SendReminderResponse], error) {
	return c.sendReminder.CallUnary(ctx, req)
}
