package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const GroupServiceName = "hisab.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure  = "/hisab.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure    = "/hisab.v1.GroupService/JoinGroup"
	GroupServiceListMyGroupsProcedure = "/hisab.v1.GroupService/ListMyGroups"
	GroupServiceGetGroupProcedure     = "/hisab.v1.GroupService/GetGroup"
	GroupServiceUpdateRoleProcedure   = "/hisab.v1.GroupService/UpdateRole"
	GroupServiceRemoveMemberProcedure = "/hisab.v1.GroupService/RemoveMember"
	GroupServiceDeleteGroupProcedure  = "/hisab.v1.GroupService/DeleteGroup"
)

type Member struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	IsManager bool   `json:"is_manager"`
	Title     string `json:"title"`
}

// Group is a mess. Members is only filled by GetGroup, CreateGroup and JoinGroup.
type Group struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	UniqueName  string   `json:"unique_name"`
	Type        string   `json:"type"`
	ManagerID   string   `json:"manager_id"`
	CreatedAt   int64    `json:"created_at"`
	Members     []Member `json:"members,omitempty"`
}

type CreateGroupRequest struct {
	DisplayName string `json:"display_name"`
	UniqueName  string `json:"unique_name"`
	// Type is "smart_meal" (default) or "monthly_avg".
	Type string `json:"type,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	UniqueName string `json:"unique_name"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type ListMyGroupsRequest struct{}

type ListMyGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type UpdateRoleRequest struct {
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	IsManager bool   `json:"is_manager"`
}

type UpdateRoleResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	ListMyGroups(context.Context, *connect.Request[ListMyGroupsRequest]) (*connect.Response[ListMyGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	UpdateRole(context.Context, *connect.Request[UpdateRoleRequest]) (*connect.Response[UpdateRoleResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceJoinGroupProcedure, connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...))
	mux.Handle(GroupServiceListMyGroupsProcedure, connect.NewUnaryHandler(GroupServiceListMyGroupsProcedure, svc.ListMyGroups, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceUpdateRoleProcedure, connect.NewUnaryHandler(GroupServiceUpdateRoleProcedure, svc.UpdateRole, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	return "/" + GroupServiceName + "/", mux
}

type GroupServiceClient struct {
	createGroup  *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup    *connect.Client[JoinGroupRequest, JoinGroupResponse]
	listMyGroups *connect.Client[ListMyGroupsRequest, ListMyGroupsResponse]
	getGroup     *connect.Client[GetGroupRequest, GetGroupResponse]
	updateRole   *connect.Client[UpdateRoleRequest, UpdateRoleResponse]
	removeMember *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	deleteGroup  *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:  connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		joinGroup:    connect.NewClient[JoinGroupRequest, JoinGroupResponse](httpClient, baseURL+GroupServiceJoinGroupProcedure, opts...),
		listMyGroups: connect.NewClient[ListMyGroupsRequest, ListMyGroupsResponse](httpClient, baseURL+GroupServiceListMyGroupsProcedure, opts...),
		getGroup:     connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		updateRole:   connect.NewClient[UpdateRoleRequest, UpdateRoleResponse](httpClient, baseURL+GroupServiceUpdateRoleProcedure, opts...),
		removeMember: connect.NewClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		deleteGroup:  connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListMyGroups(ctx context.Context, req *connect.Request[ListMyGroupsRequest]) (*connect.Response[ListMyGroupsResponse], error) {
	return c.listMyGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateRole(ctx context.Context, req *connect.Request[UpdateRoleRequest]) (*connect.Response[UpdateRoleResponse], error) {
	return c.updateRole.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}
