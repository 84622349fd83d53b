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
	errAlreadyInGroup  = errors.New("already in group")
	errUniqueNameTaken = errors.New("unique name is already taken")
	errManagerRemoval  = errors.New("the group manager cannot be removed")
	errManagerDemotion = errors.New("the group manager must keep manager rights")
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store    storage.Store
	notifier *events.Notifier
}

// NewGroupService creates a new GroupService with the given storage backend.
// A nil notifier records notifications in store and publishes nothing.
func NewGroupService(store storage.Store, notifier *events.Notifier) *GroupService {
	if notifier == nil {
		notifier = events.NewNotifier(store, nil, nil)
	}
	return &GroupService{store: store, notifier: notifier}
}

// CreateGroup creates a group managed by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"unique_name", req.Msg.UniqueName,
		"type", req.Msg.Type,
	)

	displayName := strings.TrimSpace(req.Msg.DisplayName)
	uniqueName := strings.TrimSpace(req.Msg.UniqueName)
	if displayName == "" || uniqueName == "" {
		return nil, invalidArgument("display_name and unique_name are required")
	}
	groupType := models.GroupType(req.Msg.Type)
	if groupType == "" {
		groupType = models.GroupTypeSmartMeal
	}
	if !groupType.Valid() {
		return nil, invalidArgument("unknown group type %q", req.Msg.Type)
	}

	group := &models.Group{
		DisplayName: displayName,
		UniqueName:  uniqueName,
		Type:        groupType,
		ManagerID:   userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, errUniqueNameTaken)
		}
		return nil, fail("CreateGroup", err)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, fail("CreateGroup", err, "group_id", group.ID)
	}

	slog.Info("Group created", "group_id", group.ID, "manager_id", userID)
	emit(ctx, s.notifier, events.TypeGroupCreated, group.ID, userID, toAPIGroup(group, nil), "")

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// JoinGroup adds the caller to the group with the given unique name.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinGroup request received", "unique_name", req.Msg.UniqueName, "user_id", userID)

	uniqueName := strings.TrimSpace(req.Msg.UniqueName)
	if uniqueName == "" {
		return nil, invalidArgument("unique_name is required")
	}

	group, err := s.store.GetGroupByUniqueName(ctx, uniqueName)
	if err != nil {
		return nil, fail("JoinGroup", err)
	}

	err = s.store.AddMember(ctx, group.ID, models.Member{UserID: userID, Title: models.TitleMember})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, connect.NewError(connect.CodeAlreadyExists, errAlreadyInGroup)
	}
	if err != nil {
		return nil, fail("JoinGroup", err, "group_id", group.ID)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, fail("JoinGroup", err, "group_id", group.ID)
	}

	slog.Info("Member joined", "group_id", group.ID, "user_id", userID)
	emit(ctx, s.notifier, events.TypeMemberJoined, group.ID, userID, nil, "")

	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// ListMyGroups returns the groups the caller belongs to.
func (s *GroupService) ListMyGroups(ctx context.Context, req *connect.Request[api.ListMyGroupsRequest]) (*connect.Response[api.ListMyGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fail("ListMyGroups", err, "user_id", userID)
	}

	out := make([]*api.Group, len(groups))
	for i := range groups {
		out[i] = toAPIGroup(&groups[i], nil)
	}

	slog.Debug("ListMyGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListMyGroupsResponse{Groups: out}), nil
}

// GetGroup retrieves a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", req.Msg.GroupID)
	}

	members, err := s.store.ListMembers(ctx, access.group.ID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", access.group.ID)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(access.group, members)}), nil
}

// UpdateRole changes a member's title and manager flag. It does not change
// which member holds the fund.
func (s *GroupService) UpdateRole(ctx context.Context, req *connect.Request[api.UpdateRoleRequest]) (*connect.Response[api.UpdateRoleResponse], error) {
	access, err := managersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("UpdateRole", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	slog.Info("UpdateRole request received",
		"group_id", groupID,
		"user_id", req.Msg.UserID,
		"is_manager", req.Msg.IsManager,
	)

	if _, err := s.store.GetMember(ctx, groupID, req.Msg.UserID); err != nil {
		return nil, fail("UpdateRole", err, "group_id", groupID)
	}
	if req.Msg.UserID == access.group.ManagerID && !req.Msg.IsManager {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errManagerDemotion)
	}

	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		title = models.TitleMember
		if req.Msg.IsManager {
			title = models.TitleManager
		}
	}

	if err := s.store.UpdateMemberRole(ctx, groupID, req.Msg.UserID, req.Msg.IsManager, title); err != nil {
		return nil, fail("UpdateRole", err, "group_id", groupID)
	}
	member, err := s.store.GetMember(ctx, groupID, req.Msg.UserID)
	if err != nil {
		return nil, fail("UpdateRole", err, "group_id", groupID)
	}

	slog.Info("Role updated", "group_id", groupID, "user_id", member.UserID, "title", member.Title)
	return connect.NewResponse(&api.UpdateRoleResponse{Member: toAPIMember(*member)}), nil
}

// RemoveMember removes a member. Managers may remove anyone except the fund
// holder; other members may only remove themselves.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	access, err := membersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("RemoveMember", err, "group_id", req.Msg.GroupID)
	}
	groupID := access.group.ID
	target := strings.TrimSpace(req.Msg.UserID)
	slog.Info("RemoveMember request received", "group_id", groupID, "user_id", target)

	if target == "" {
		return nil, invalidArgument("user_id is required")
	}
	if target != access.caller.UserID && !access.caller.IsManager {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotManager)
	}
	if target == access.group.ManagerID {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errManagerRemoval)
	}

	if err := s.store.RemoveMember(ctx, groupID, target); err != nil {
		return nil, fail("RemoveMember", err, "group_id", groupID)
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", target)
	emit(ctx, s.notifier, events.TypeMemberRemoved, groupID, access.caller.UserID, map[string]string{"user_id": target}, "")

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// DeleteGroup removes a group and everything recorded in it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	access, err := managersOnly(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, fail("DeleteGroup", err, "group_id", req.Msg.GroupID)
	}
	slog.Info("DeleteGroup request received", "group_id", access.group.ID)

	if err := s.store.DeleteGroup(ctx, access.group.ID); err != nil {
		return nil, fail("DeleteGroup", err, "group_id", access.group.ID)
	}

	slog.Info("Group deleted", "group_id", access.group.ID)
	emit(ctx, s.notifier, events.TypeGroupDeleted, access.group.ID, access.caller.UserID, nil, "")

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
