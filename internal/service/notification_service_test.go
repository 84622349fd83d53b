package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

func TestMealRequests(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")
	groupID := env.createGroup(t, "", alice, bob, carol)
	ctx := context.Background()

	created, err := env.inbox.CreateMealRequest(ctx, as(bob, &api.CreateMealRequestRequest{
		GroupID: groupID,
		Date:    jan(22),
		Message: "no dinner",
	}))
	if err != nil {
		t.Fatalf("CreateMealRequest failed: %v", err)
	}
	req := created.Msg.Request
	if req.Status != "pending" || req.UserName != "Bob" {
		t.Errorf("unexpected request: %+v", req)
	}
	if _, err := env.inbox.CreateMealRequest(ctx, as(carol, &api.CreateMealRequestRequest{
		GroupID: groupID,
		Date:    jan(23),
		Message: "guest for lunch",
	})); err != nil {
		t.Fatalf("CreateMealRequest failed: %v", err)
	}

	_, err = env.inbox.CreateMealRequest(ctx, as(bob, &api.CreateMealRequestRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodeInvalidArgument)

	managerInbox, err := env.inbox.ListNotifications(ctx, as(alice, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(managerInbox.Msg.Notifications) != 2 {
		t.Fatalf("manager notifications: expected 2, got %d", len(managerInbox.Msg.Notifications))
	}
	found := false
	for _, n := range managerInbox.Msg.Notifications {
		if n.Message == "Bob requested a meal change for 2024-01-22: no dinner" {
			found = true
		}
	}
	if !found {
		t.Errorf("manager was not told about Bob's request: %+v", managerInbox.Msg.Notifications)
	}

	all, err := env.inbox.ListMealRequests(ctx, as(alice, &api.ListMealRequestsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListMealRequests failed: %v", err)
	}
	if len(all.Msg.Requests) != 2 {
		t.Errorf("manager should see 2 requests, got %d", len(all.Msg.Requests))
	}
	own, err := env.inbox.ListMealRequests(ctx, as(bob, &api.ListMealRequestsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListMealRequests failed: %v", err)
	}
	if len(own.Msg.Requests) != 1 || own.Msg.Requests[0].ID != req.ID {
		t.Errorf("member should only see own request, got %+v", own.Msg.Requests)
	}

	_, err = env.inbox.ResolveMealRequest(ctx, as(bob, &api.ResolveMealRequestRequest{GroupID: groupID, RequestID: req.ID, Status: "approved"}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.inbox.ResolveMealRequest(ctx, as(alice, &api.ResolveMealRequestRequest{GroupID: groupID, RequestID: req.ID, Status: "pending"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	resolved, err := env.inbox.ResolveMealRequest(ctx, as(alice, &api.ResolveMealRequestRequest{GroupID: groupID, RequestID: req.ID, Status: "approved"}))
	if err != nil {
		t.Fatalf("ResolveMealRequest failed: %v", err)
	}
	if resolved.Msg.Request.Status != "approved" {
		t.Errorf("status: got %s", resolved.Msg.Request.Status)
	}

	_, err = env.inbox.ResolveMealRequest(ctx, as(alice, &api.ResolveMealRequestRequest{GroupID: groupID, RequestID: req.ID, Status: "rejected"}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	pending, err := env.inbox.ListMealRequests(ctx, as(alice, &api.ListMealRequestsRequest{GroupID: groupID, Status: "pending"}))
	if err != nil {
		t.Fatalf("ListMealRequests failed: %v", err)
	}
	if len(pending.Msg.Requests) != 1 {
		t.Errorf("pending: expected 1, got %d", len(pending.Msg.Requests))
	}

	bobInbox, err := env.inbox.ListNotifications(ctx, as(bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(bobInbox.Msg.Notifications) != 1 || bobInbox.Msg.Notifications[0].Message != "Your meal request for 2024-01-22 was approved." {
		t.Errorf("unexpected inbox: %+v", bobInbox.Msg.Notifications)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	env := setupTestServer(t)
	_, bob, _ := seedMess(t, env)
	anonymous := testUser{}
	ctx := context.Background()

	inbox, err := env.inbox.ListNotifications(ctx, as(bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if inbox.Msg.Unread == 0 {
		t.Fatal("expected unread notifications")
	}
	before := inbox.Msg.Unread
	first := inbox.Msg.Notifications[0]

	if _, err := env.inbox.MarkNotificationRead(ctx, as(bob, &api.MarkNotificationReadRequest{NotificationID: first.ID})); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}

	inbox, err = env.inbox.ListNotifications(ctx, as(bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if inbox.Msg.Unread != before-1 {
		t.Errorf("unread: expected %d, got %d", before-1, inbox.Msg.Unread)
	}

	_, err = env.inbox.MarkNotificationRead(ctx, as(anonymous, &api.MarkNotificationReadRequest{NotificationID: first.ID}))
	wantCode(t, err, connect.CodeUnauthenticated)

	carol := env.register(t, "Carol")
	_, err = env.inbox.MarkNotificationRead(ctx, as(carol, &api.MarkNotificationReadRequest{NotificationID: first.ID}))
	wantCode(t, err, connect.CodeNotFound)
}
