package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/money"
)

const CashBookServiceName = "hisab.v1.CashBookService"

const (
	CashBookServiceListCashEntriesProcedure = "/hisab.v1.CashBookService/ListCashEntries"
	CashBookServiceAddCashEntryProcedure    = "/hisab.v1.CashBookService/AddCashEntry"
	CashBookServiceUpdateCashEntryProcedure = "/hisab.v1.CashBookService/UpdateCashEntry"
)

// CashEntry is one counterparty in the caller's personal cash book.
type CashEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Receivable is owed to the caller, Payable is owed by the caller.
	Receivable money.Amount `json:"receivable"`
	Payable    money.Amount `json:"payable"`
	Net        money.Amount `json:"net"`
}

type ListCashEntriesRequest struct{}

type ListCashEntriesResponse struct {
	Entries         []*CashEntry `json:"entries"`
	TotalReceivable money.Amount `json:"total_receivable"`
	TotalPayable    money.Amount `json:"total_payable"`
	Net             money.Amount `json:"net"`
}

type AddCashEntryRequest struct {
	Name       string       `json:"name"`
	Receivable money.Amount `json:"receivable"`
	Payable    money.Amount `json:"payable"`
}

type AddCashEntryResponse struct {
	Entry *CashEntry `json:"entry"`
}

// UpdateCashEntryRequest changes only the fields that are set.
type UpdateCashEntryRequest struct {
	EntryID    string        `json:"entry_id"`
	Name       *string       `json:"name,omitempty"`
	Receivable *money.Amount `json:"receivable,omitempty"`
	Payable    *money.Amount `json:"payable,omitempty"`
}

type UpdateCashEntryResponse struct {
	Entry *CashEntry `json:"entry"`
}

type CashBookServiceHandler interface {
	ListCashEntries(context.Context, *connect.Request[ListCashEntriesRequest]) (*connect.Response[ListCashEntriesResponse], error)
	AddCashEntry(context.Context, *connect.Request[AddCashEntryRequest]) (*connect.Response[AddCashEntryResponse], error)
	UpdateCashEntry(context.Context, *connect.Request[UpdateCashEntryRequest]) (*connect.Response[UpdateCashEntryResponse], error)
}

func NewCashBookServiceHandler(svc CashBookServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(CashBookServiceListCashEntriesProcedure, connect.NewUnaryHandler(CashBookServiceListCashEntriesProcedure, svc.ListCashEntries, opts...))
	mux.Handle(CashBookServiceAddCashEntryProcedure, connect.NewUnaryHandler(CashBookServiceAddCashEntryProcedure, svc.AddCashEntry, opts...))
	mux.Handle(CashBookServiceUpdateCashEntryProcedure, connect.NewUnaryHandler(CashBookServiceUpdateCashEntryProcedure, svc.UpdateCashEntry, opts...))
	return "/" + CashBookServiceName + "/", mux
}

type CashBookServiceClient struct {
	listCashEntries *connect.Client[ListCashEntriesRequest, ListCashEntriesResponse]
	addCashEntry    *connect.Client[AddCashEntryRequest, AddCashEntryResponse]
	updateCashEntry *connect.Client[UpdateCashEntryRequest, UpdateCashEntryResponse]
}

func NewCashBookServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CashBookServiceClient {
	opts = clientOptions(opts)
	return &CashBookServiceClient{
		listCashEntries: connect.NewClient[ListCashEntriesRequest, ListCashEntriesResponse](httpClient, baseURL+CashBookServiceListCashEntriesProcedure, opts...),
		addCashEntry:    connect.NewClient[AddCashEntryRequest, AddCashEntryResponse](httpClient, baseURL+CashBookServiceAddCashEntryProcedure, opts...),
		updateCashEntry: connect.NewClient[UpdateCashEntryRequest, UpdateCashEntryResponse](httpClient, baseURL+CashBookServiceUpdateCashEntryProcedure, opts...),
	}
}

func (c *CashBookServiceClient) ListCashEntries(ctx context.Context, req *connect.Request[ListCashEntriesRequest]) (*connect.Response[ListCashEntriesResponse], error) {
	return c.listCashEntries.CallUnary(ctx, req)
}

func (c *CashBookServiceClient) AddCashEntry(ctx context.Context, req *connect.Request[AddCashEntryRequest]) (*connect.Response[AddCashEntryResponse], error) {
	return c.addCashEntry.CallUnary(ctx, req)
}

func (c *CashBookServiceClient) UpdateCashEntry(ctx context.Context, req *connect.Request[UpdateCashEntryRequest]) (*connect.Response[UpdateCashEntryResponse], error) {
	return c.updateCashEntry.CallUnary(ctx, req)
}
