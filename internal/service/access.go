package service

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// groupAccess is what a group-scoped RPC knows about its caller.
type groupAccess struct {
	group  *models.Group
	caller *models.Member
}

// membersOnly loads the group and checks that the caller belongs to it.
func membersOnly(ctx context.Context, store storage.GroupStore, groupID string) (*groupAccess, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingID)
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member, err := store.GetMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	if err != nil {
		return nil, err
	}
	return &groupAccess{group: group, caller: member}, nil
}

// managersOnly is membersOnly plus a check that the caller manages the group.
func managersOnly(ctx context.Context, store storage.GroupStore, groupID string) (*groupAccess, error) {
	access, err := membersOnly(ctx, store, groupID)
	if err != nil {
		return nil, err
	}
	if !access.caller.IsManager {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotManager)
	}
	return access, nil
}

// findMember returns the member with userID from members.
func findMember(members []models.Member, userID string) (models.Member, bool) {
	for _, m := range members {
		if m.UserID == userID {
			return m, true
		}
	}
	return models.Member{}, false
}

// entryOwner resolves the user an entry is recorded for: requested if set,
// otherwise the caller. The owner must be a current member.
func entryOwner(members []models.Member, requested, caller string) (models.Member, error) {
	userID := strings.TrimSpace(requested)
	if userID == "" {
		userID = caller
	}
	m, ok := findMember(members, userID)
	if !ok {
		return models.Member{}, connect.NewError(connect.CodeInvalidArgument, errPayeeAbsent)
	}
	return m, nil
}
