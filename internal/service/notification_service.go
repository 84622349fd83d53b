package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/events"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/pkg/api"
)

var (
	errMissingDate     = errors.New("date is required")
	errUnknownStatus   = errors.New(`status must be "approved" or "rejected"`)
	errAlreadyResolved = errors.New("meal request was already resolved")
)

// NotificationService implements the Connect NotificationService: a user's
// inbox and meal change requests.
type NotificationService struct {
	store    storage.Store
	notifier *events.Notifier
	messages events.Messages
}

// NewNotificationService creates a NotificationService. A nil notifier
// records notifications in store and publishes nothing.
func NewNotificationService(store storage.Store, notifier *events.Notifier) *NotificationService {
	if notifier == nil {
		notifier = events.NewNotifier(store, nil, nil)
	}
	return &NotificationService{store: store, notifier: notifier}
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fail("ListNotifications", err, "user_id", userID)
	}

	resp := &api.ListNotificationsResponse{Notifications: make([]*api.Notification, len(notes))}
	for i, n := range notes {
		resp.Notifications[i] = toAPINotification(n)
		if !n.IsRead {
			resp.Unread++
		}
	}
	return connect.NewResponse(resp), nil
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkNotificationRead(ctx, userID, req.Msg.NotificationID); err != nil {
		return nil, fail("MarkNotificationRead", err, "user_id", userID)
	}
	return connect.NewResponse(&api.MarkNotificationReadResponse{}), nil
}

// CreateMealRequest asks the manager to change the caller's meals for a day.
func (s *NotificationService) CreateMealRequest(ctx context.Context, req *connect.Request[api.CreateMealRequestRequest]) (*connect.Response[api.CreateMealRequestResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("CreateMealRequest", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("CreateMealRequest request received", "group_id", groupID, "date", req.Msg.Date)

	if req.Msg.Date.IsZero() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingDate)
	}

	mr := &models.MealRequest{
		GroupID:  groupID,
		UserID:   access.caller.UserID,
		UserName: access.caller.Name,
		Date:     req.Msg.Date,
		Status:   models.MealRequestPending,
		Message:  strings.TrimSpace(req.Msg.Message),
	}
	if err := s.store.CreateMealRequest(ctx, mr); err != nil {
		return nil, fail("CreateMealRequest", err, "group_id", groupID)
	}

	out := toAPIMealRequest(mr)
	var recipients []string
	if m := access.group.ManagerID; m != "" && m != mr.UserID {
		recipients = append(recipients, m)
	}
	emit(ctx, s.notifier, events.TypeMealRequestCreated, groupID, mr.UserID, out,
		s.messages.MealRequestCreated(access.caller.Name, mr.Date, mr.Message), recipients...)

	return connect.NewResponse(&api.CreateMealRequestResponse{Request: out}), nil
}

// ListMealRequests returns a group's requests. Managers see all of them,
// other members only their own.
func (s *NotificationService) ListMealRequests(ctx context.Context, req *connect.Request[api.ListMealRequestsRequest]) (*connect.Response[api.ListMealRequestsResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("ListMealRequests", err, "group_id", req.Msg.GroupID)
	}

	status := models.MealRequestStatus(req.Msg.Status)
	if status != "" && !status.Valid() {
		return nil, invalidArgument("unknown status %q", req.Msg.Status)
	}

	all, err := s.store.ListMealRequests(ctx, access.group.ID)
	if err != nil {
		return nil, fail("ListMealRequests", err, "group_id", access.group.ID)
	}

	resp := &api.ListMealRequestsResponse{Requests: []*api.MealRequest{}}
	for i := range all {
		r := &all[i]
		if !access.caller.IsManager && r.UserID != access.caller.UserID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		resp.Requests = append(resp.Requests, toAPIMealRequest(r))
	}
	return connect.NewResponse(resp), nil
}

// ResolveMealRequest approves or rejects a pending request and notifies the
// member who made it.
func (s *NotificationService) ResolveMealRequest(ctx context.Context, req *connect.Request[api.ResolveMealRequestRequest]) (*connect.Response[api.ResolveMealRequestResponse], error) {
	access, err := managersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("ResolveMealRequest", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("ResolveMealRequest request received",
		"group_id", groupID,
		"request_id", req.Msg.RequestID,
		"status", req.Msg.Status,
	)

	status := models.MealRequestStatus(req.Msg.Status)
	if status != models.MealRequestApproved && status != models.MealRequestRejected {
		return nil, connect.NewError(connect.CodeInvalidArgument, errUnknownStatus)
	}

	mr, err := s.store.GetMealRequest(ctx, groupID, req.Msg.RequestID)
	if err != nil {
		return nil, fail("ResolveMealRequest", err, "group_id", groupID)
	}
	if mr.Status != models.MealRequestPending {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errAlreadyResolved)
	}

	if err := s.store.UpdateMealRequestStatus(ctx, groupID, mr.ID, status); err != nil {
		return nil, fail("ResolveMealRequest", err, "group_id", groupID)
	}
	mr.Status = status

	out := toAPIMealRequest(mr)
	emit(ctx, s.notifier, events.TypeMealRequestResolved, groupID, access.caller.UserID, out,
		s.messages.MealRequestResolved(mr.Date, status), mr.UserID)

	return connect.NewResponse(&api.ResolveMealRequestResponse{Request: out}), nil
}
