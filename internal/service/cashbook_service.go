package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/pkg/api"
)

// CashBookService keeps each user's private record of who owes them and
// whom they owe outside any group.
type CashBookService struct {
	store storage.CashBookStore
}

func NewCashBookService(store storage.CashBookStore) *CashBookService {
	return &CashBookService{store: store}
}

func (s *CashBookService) ListCashEntries(ctx context.Context, req *connect.Request[api.ListCashEntriesRequest]) (*connect.Response[api.ListCashEntriesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListCashEntries(ctx, userID)
	if err != nil {
		return nil, fail("ListCashEntries", err, "user_id", userID)
	}

	resp := &api.ListCashEntriesResponse{Entries: []*api.CashEntry{}}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toAPICashEntry(e))
		resp.TotalReceivable = resp.TotalReceivable.Add(e.Receivable)
		resp.TotalPayable = resp.TotalPayable.Add(e.Payable)
	}
	resp.Net = resp.TotalReceivable.Sub(resp.TotalPayable)
	return connect.NewResponse(resp), nil
}

func (s *CashBookService) AddCashEntry(ctx context.Context, req *connect.Request[api.AddCashEntryRequest]) (*connect.Response[api.AddCashEntryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddCashEntry request received", "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	if err := checkCashAmounts(req.Msg.Receivable, req.Msg.Payable); err != nil {
		return nil, err
	}

	entry := &models.CashEntry{
		UserID:     userID,
		Name:       name,
		Receivable: req.Msg.Receivable,
		Payable:    req.Msg.Payable,
	}
	if err := s.store.AddCashEntry(ctx, entry); err != nil {
		return nil, fail("AddCashEntry", err, "user_id", userID)
	}
	return connect.NewResponse(&api.AddCashEntryResponse{Entry: toAPICashEntry(*entry)}), nil
}

func (s *CashBookService) UpdateCashEntry(ctx context.Context, req *connect.Request[api.UpdateCashEntryRequest]) (*connect.Response[api.UpdateCashEntryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateCashEntry request received", "user_id", userID, "entry_id", req.Msg.EntryID)

	if req.Msg.EntryID == "" {
		return nil, invalidArgument("entry_id is required")
	}

	// Another user's line reads as missing.
	entry, err := s.store.GetCashEntry(ctx, userID, req.Msg.EntryID)
	if err != nil {
		return nil, fail("UpdateCashEntry", err, "entry_id", req.Msg.EntryID)
	}

	if req.Msg.Name != nil {
		name := strings.TrimSpace(*req.Msg.Name)
		if name == "" {
			return nil, invalidArgument("name is required")
		}
		entry.Name = name
	}
	if req.Msg.Receivable != nil {
		entry.Receivable = *req.Msg.Receivable
	}
	if req.Msg.Payable != nil {
		entry.Payable = *req.Msg.Payable
	}
	if err := checkCashAmounts(entry.Receivable, entry.Payable); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCashEntry(ctx, entry); err != nil {
		return nil, fail("UpdateCashEntry", err, "entry_id", entry.ID)
	}
	return connect.NewResponse(&api.UpdateCashEntryResponse{Entry: toAPICashEntry(*entry)}), nil
}

func checkCashAmounts(receivable, payable money.Amount) error {
	if receivable.Sign() < 0 || payable.Sign() < 0 {
		return invalidArgument("amounts must not be negative")
	}
	return nil
}
