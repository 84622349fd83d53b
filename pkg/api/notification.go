package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/models"
)

const NotificationServiceName = "hisab.v1.NotificationService"

const (
	NotificationServiceListNotificationsProcedure    = "/hisab.v1.NotificationService/ListNotifications"
	NotificationServiceMarkNotificationReadProcedure = "/hisab.v1.NotificationService/MarkNotificationRead"
	NotificationServiceCreateMealRequestProcedure    = "/hisab.v1.NotificationService/CreateMealRequest"
	NotificationServiceListMealRequestsProcedure     = "/hisab.v1.NotificationService/ListMealRequests"
	NotificationServiceResolveMealRequestProcedure   = "/hisab.v1.NotificationService/ResolveMealRequest"
)

type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt int64  `json:"created_at"`
}

type MealRequest struct {
	ID       string      `json:"id"`
	GroupID  string      `json:"group_id"`
	UserID   string      `json:"user_id"`
	UserName string      `json:"user_name"`
	Date     models.Date `json:"date"`
	Status   string      `json:"status"`
	Message  string      `json:"message"`
}

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	Unread        int             `json:"unread"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notification_id"`
}

type MarkNotificationReadResponse struct{}

type CreateMealRequestRequest struct {
	GroupID string      `json:"group_id"`
	Date    models.Date `json:"date"`
	Message string      `json:"message"`
}

type CreateMealRequestResponse struct {
	Request *MealRequest `json:"request"`
}

// ListMealRequestsRequest lists a group's requests. Managers see every
// request, other members only their own. Status filters when set.
type ListMealRequestsRequest struct {
	GroupID string `json:"group_id"`
	Status  string `json:"status,omitempty"`
}

type ListMealRequestsResponse struct {
	Requests []*MealRequest `json:"requests"`
}

type ResolveMealRequestRequest struct {
	GroupID   string `json:"group_id"`
	RequestID string `json:"request_id"`
	// Status is "approved" or "rejected".
	Status string `json:"status"`
}

type ResolveMealRequestResponse struct {
	Request *MealRequest `json:"request"`
}

type NotificationServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[MarkNotificationReadRequest]) (*connect.Response[MarkNotificationReadResponse], error)
	CreateMealRequest(context.Context, *connect.Request[CreateMealRequestRequest]) (*connect.Response[CreateMealRequestResponse], error)
	ListMealRequests(context.Context, *connect.Request[ListMealRequestsRequest]) (*connect.Response[ListMealRequestsResponse], error)
	ResolveMealRequest(context.Context, *connect.Request[ResolveMealRequestRequest]) (*connect.Response[ResolveMealRequestResponse], error)
}

func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(NotificationServiceListNotificationsProcedure, connect.NewUnaryHandler(NotificationServiceListNotificationsProcedure, svc.ListNotifications, opts...))
	mux.Handle(NotificationServiceMarkNotificationReadProcedure, connect.NewUnaryHandler(NotificationServiceMarkNotificationReadProcedure, svc.MarkNotificationRead, opts...))
	mux.Handle(NotificationServiceCreateMealRequestProcedure, connect.NewUnaryHandler(NotificationServiceCreateMealRequestProcedure, svc.CreateMealRequest, opts...))
	mux.Handle(NotificationServiceListMealRequestsProcedure, connect.NewUnaryHandler(NotificationServiceListMealRequestsProcedure, svc.ListMealRequests, opts...))
	mux.Handle(NotificationServiceResolveMealRequestProcedure, connect.NewUnaryHandler(NotificationServiceResolveMealRequestProcedure, svc.ResolveMealRequest, opts...))
	return "/" + NotificationServiceName + "/", mux
}

type NotificationServiceClient struct {
	listNotifications    *connect.Client[ListNotificationsRequest, ListNotificationsResponse]
	markNotificationRead *connect.Client[MarkNotificationReadRequest, MarkNotificationReadResponse]
	createMealRequest    *connect.Client[CreateMealRequestRequest, CreateMealRequestResponse]
	listMealRequests     *connect.Client[ListMealRequestsRequest, ListMealRequestsResponse]
	resolveMealRequest   *connect.Client[ResolveMealRequestRequest, ResolveMealRequestResponse]
}

func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NotificationServiceClient {
	opts = clientOptions(opts)
	return &NotificationServiceClient{
		listNotifications:    connect.NewClient[ListNotificationsRequest, ListNotificationsResponse](httpClient, baseURL+NotificationServiceListNotificationsProcedure, opts...),
		markNotificationRead: connect.NewClient[MarkNotificationReadRequest, MarkNotificationReadResponse](httpClient, baseURL+NotificationServiceMarkNotificationReadProcedure, opts...),
		createMealRequest:    connect.NewClient[CreateMealRequestRequest, CreateMealRequestResponse](httpClient, baseURL+NotificationServiceCreateMealRequestProcedure, opts...),
		listMealRequests:     connect.NewClient[ListMealRequestsRequest, ListMealRequestsResponse](httpClient, baseURL+NotificationServiceListMealRequestsProcedure, opts...),
		resolveMealRequest:   connect.NewClient[ResolveMealRequestRequest, ResolveMealRequestResponse](httpClient, baseURL+NotificationServiceResolveMealRequestProcedure, opts...),
	}
}

func (c *NotificationServiceClient) ListNotifications(ctx context.Context, req *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) MarkNotificationRead(ctx context.Context, req *connect.Request[MarkNotificationReadRequest]) (*connect.Response[MarkNotificationReadResponse], error) {
	return c.markNotificationRead.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) CreateMealRequest(ctx context.Context, req *connect.Request[CreateMealRequestRequest]) (*connect.Response[CreateMealRequestResponse], error) {
	return c.createMealRequest.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) ListMealRequests(ctx context.Context, req *connect.Request[ListMealRequestsRequest]) (*connect.Response[ListMealRequestsResponse], error) {
	return c.listMealRequests.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) ResolveMealRequest(ctx context.Context, req *connect.Request[ResolveMealRequestRequest]) (*connect.Response[ResolveMealRequestResponse], error) {
	return c.resolveMealRequest.CallUnary(ctx, req)
}
