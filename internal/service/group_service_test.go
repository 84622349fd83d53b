package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")

	resp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{
		DisplayName: "Hall 4 Mess",
		UniqueName:  "hall4",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	g := resp.Msg.Group
	if g.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if g.Type != "smart_meal" {
		t.Errorf("type: expected smart_meal, got %s", g.Type)
	}
	if g.ManagerID != alice.id {
		t.Errorf("manager: expected %s, got %s", alice.id, g.ManagerID)
	}
	if len(g.Members) != 1 || !g.Members[0].IsManager || g.Members[0].Title != "Manager" {
		t.Errorf("expected the creator as sole manager member, got %+v", g.Members)
	}
	if g.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{DisplayName: "X", UniqueName: "x", Type: "weekly"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{DisplayName: "", UniqueName: "x"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{DisplayName: "X", UniqueName: "x"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, err = env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{DisplayName: "Y", UniqueName: "x"}))
	wantCode(t, err, connect.CodeAlreadyExists)
}

func TestJoinGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	ctx := context.Background()

	groupID := env.createGroup(t, "monthly_avg", alice)

	join, err := env.groups.JoinGroup(ctx, as(bob, &api.JoinGroupRequest{UniqueName: "mess-alice"}))
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if join.Msg.Group.ID != groupID {
		t.Errorf("joined %s, want %s", join.Msg.Group.ID, groupID)
	}
	if len(join.Msg.Group.Members) != 2 {
		t.Fatalf("members: expected 2, got %d", len(join.Msg.Group.Members))
	}
	if m := join.Msg.Group.Members[1]; m.UserID != bob.id || m.Name != "Bob" || m.IsManager || m.Title != "Member" {
		t.Errorf("unexpected member: %+v", m)
	}

	_, err = env.groups.JoinGroup(ctx, as(bob, &api.JoinGroupRequest{UniqueName: "mess-alice"}))
	wantCode(t, err, connect.CodeAlreadyExists)

	_, err = env.groups.JoinGroup(ctx, as(bob, &api.JoinGroupRequest{UniqueName: "nope"}))
	wantCode(t, err, connect.CodeNotFound)

	list, err := env.groups.ListMyGroups(ctx, as(bob, &api.ListMyGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListMyGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 1 || list.Msg.Groups[0].Type != "monthly_avg" {
		t.Errorf("unexpected groups: %+v", list.Msg.Groups)
	}
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	mallory := env.register(t, "Mallory")
	ctx := context.Background()

	groupID := env.createGroup(t, "", alice)

	_, err := env.groups.GetGroup(ctx, as(mallory, &api.GetGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: "nonexistent-id"}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{}))
	wantCode(t, err, connect.CodeInvalidArgument)

	resp, err := env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.DisplayName != "Mess Alice" {
		t.Errorf("display name: got %q", resp.Msg.Group.DisplayName)
	}
}

func TestUpdateRole(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")
	ctx := context.Background()

	groupID := env.createGroup(t, "", alice, bob, carol)

	_, err := env.groups.UpdateRole(ctx, as(bob, &api.UpdateRoleRequest{GroupID: groupID, UserID: carol.id, Title: "Cook"}))
	wantCode(t, err, connect.CodePermissionDenied)

	resp, err := env.groups.UpdateRole(ctx, as(alice, &api.UpdateRoleRequest{
		GroupID:   groupID,
		UserID:    bob.id,
		Title:     "Co-manager",
		IsManager: true,
	}))
	if err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if !resp.Msg.Member.IsManager || resp.Msg.Member.Title != "Co-manager" {
		t.Errorf("unexpected member: %+v", resp.Msg.Member)
	}

	// Bob now has manager rights but does not hold the fund.
	group, err := env.groups.GetGroup(ctx, as(bob, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if group.Msg.Group.ManagerID != alice.id {
		t.Errorf("manager_id changed to %s", group.Msg.Group.ManagerID)
	}

	resp, err = env.groups.UpdateRole(ctx, as(bob, &api.UpdateRoleRequest{GroupID: groupID, UserID: carol.id}))
	if err != nil {
		t.Fatalf("UpdateRole by co-manager failed: %v", err)
	}
	if resp.Msg.Member.Title != "Member" {
		t.Errorf("default title: got %q", resp.Msg.Member.Title)
	}

	_, err = env.groups.UpdateRole(ctx, as(bob, &api.UpdateRoleRequest{GroupID: groupID, UserID: alice.id, IsManager: false}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.groups.UpdateRole(ctx, as(alice, &api.UpdateRoleRequest{GroupID: groupID, UserID: "ghost"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestRemoveMember(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	carol := env.register(t, "Carol")
	ctx := context.Background()

	groupID := env.createGroup(t, "", alice, bob, carol)

	_, err := env.groups.RemoveMember(ctx, as(bob, &api.RemoveMemberRequest{GroupID: groupID, UserID: carol.id}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.RemoveMember(ctx, as(alice, &api.RemoveMemberRequest{GroupID: groupID, UserID: alice.id}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	if _, err := env.groups.RemoveMember(ctx, as(alice, &api.RemoveMemberRequest{GroupID: groupID, UserID: carol.id})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	// Members may leave on their own.
	if _, err := env.groups.RemoveMember(ctx, as(bob, &api.RemoveMemberRequest{GroupID: groupID, UserID: bob.id})); err != nil {
		t.Fatalf("leaving failed: %v", err)
	}

	resp, err := env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(resp.Msg.Group.Members) != 1 {
		t.Errorf("members: expected 1, got %d", len(resp.Msg.Group.Members))
	}

	_, err = env.groups.GetGroup(ctx, as(bob, &api.GetGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodePermissionDenied)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	ctx := context.Background()

	groupID := env.createGroup(t, "", alice, bob)
	if _, err := env.ledger.AddExpense(ctx, as(bob, &api.AddExpenseRequest{
		GroupID:  groupID,
		Amount:   100_00,
		Category: "Rent",
	})); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	_, err := env.groups.DeleteGroup(ctx, as(bob, &api.DeleteGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := env.groups.DeleteGroup(ctx, as(alice, &api.DeleteGroupRequest{GroupID: groupID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodeNotFound)

	expenses, err := env.store.ListExpenses(ctx, groupID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("expected expenses to be deleted, found %d", len(expenses))
	}
}
