package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lector/backend/internal/model"
	"lector/backend/internal/repository/mock"
	"lector/backend/internal/service"
)

func int64Ptr(i int64) *int64 { return &i }

func TestResolveFolderIDs(t *testing.T) {
	tests := []struct {
		name        string
		legacy      *int64
		memberships []int64
		want        []int64
	}{
		{name: "empty", legacy: nil, memberships: nil, want: []int64{}},
		{name: "legacy only", legacy: int64Ptr(7), memberships: nil, want: []int64{7}},
		{name: "memberships only", legacy: nil, memberships: []int64{3, 1}, want: []int64{1, 3}},
		{name: "union deduplicates", legacy: int64Ptr(3), memberships: []int64{3, 1, 1}, want: []int64{1, 3}},
		{name: "sorted output", legacy: int64Ptr(9), memberships: []int64{4, 2}, want: []int64{2, 4, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.ResolveFolderIDs(tt.legacy, tt.memberships)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMembershipService_Set_InsertsBeforeDeleting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	feed := model.Feed{ID: 10, OwnerID: "alice", FolderID: int64Ptr(1)}
	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(feed, nil)
	folders.EXPECT().ListByIDs(ctx, "alice", []int64{1, 2}).Return([]model.Folder{{ID: 1}, {ID: 2}}, nil)

	gomock.InOrder(
		memberships.EXPECT().Insert(ctx, "alice", int64(10), int64(1)).Return(nil),
		memberships.EXPECT().Insert(ctx, "alice", int64(10), int64(2)).Return(nil),
		memberships.EXPECT().DeleteStale(ctx, int64(10), []int64{1, 2}).Return(nil),
	)

	got, err := svc.Set(ctx, "alice", 10, []int64{2, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestMembershipService_Set_SyncsLegacyColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	// Legacy column points at folder 5; the new set drops it.
	feed := model.Feed{ID: 10, OwnerID: "alice", FolderID: int64Ptr(5)}
	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(feed, nil)
	folders.EXPECT().ListByIDs(ctx, "alice", []int64{2}).Return([]model.Folder{{ID: 2}}, nil)
	memberships.EXPECT().Insert(ctx, "alice", int64(10), int64(2)).Return(nil)
	memberships.EXPECT().DeleteStale(ctx, int64(10), []int64{2}).Return(nil)
	feeds.EXPECT().UpdateLegacyFolder(ctx, int64(10), int64Ptr(2)).Return(nil)

	got, err := svc.Set(ctx, "alice", 10, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got)
}

func TestMembershipService_Set_ClearsMemberships(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	feed := model.Feed{ID: 10, OwnerID: "alice", FolderID: int64Ptr(5)}
	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(feed, nil)
	memberships.EXPECT().DeleteStale(ctx, int64(10), []int64{}).Return(nil)
	feeds.EXPECT().UpdateLegacyFolder(ctx, int64(10), nil).Return(nil)

	got, err := svc.Set(ctx, "alice", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMembershipService_Set_UnknownFolders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(model.Feed{ID: 10, OwnerID: "alice"}, nil)
	folders.EXPECT().ListByIDs(ctx, "alice", []int64{2, 99}).Return([]model.Folder{{ID: 2}}, nil)

	_, err := svc.Set(ctx, "alice", 10, []int64{2, 99})
	require.ErrorIs(t, err, service.ErrInvalid)

	var invalid *service.InvalidFolderIDsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []int64{99}, invalid.FolderIDs)
}

func TestMembershipService_Add_InsertOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	// Folder 1 is already attached; adding folders 2 and 3 must only insert.
	// A DeleteStale call here would be an unexpected-call failure.
	feed := model.Feed{ID: 10, OwnerID: "alice"}
	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(feed, nil)
	folders.EXPECT().ListByIDs(ctx, "alice", []int64{2, 3}).Return([]model.Folder{{ID: 2}, {ID: 3}}, nil)
	memberships.EXPECT().Insert(ctx, "alice", int64(10), int64(2)).Return(nil)
	memberships.EXPECT().Insert(ctx, "alice", int64(10), int64(3)).Return(nil)
	memberships.EXPECT().ListByFeed(ctx, int64(10)).Return([]int64{1, 2, 3}, nil)

	got, err := svc.Add(ctx, "alice", 10, []int64{3, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestMembershipService_Add_UnknownFolders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(model.Feed{ID: 10, OwnerID: "alice"}, nil)
	folders.EXPECT().ListByIDs(ctx, "alice", []int64{99}).Return(nil, nil)

	_, err := svc.Add(ctx, "alice", 10, []int64{99})
	var invalid *service.InvalidFolderIDsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []int64{99}, invalid.FolderIDs)
}

func TestMembershipService_ResolveForFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	feeds := mock.NewMockFeedRepository(ctrl)
	folders := mock.NewMockFolderRepository(ctrl)
	memberships := mock.NewMockMembershipRepository(ctrl)
	svc := service.NewMembershipService(feeds, folders, memberships)
	ctx := context.Background()

	feed := model.Feed{ID: 10, OwnerID: "alice", FolderID: int64Ptr(3)}
	feeds.EXPECT().GetByID(ctx, "alice", int64(10)).Return(feed, nil)
	memberships.EXPECT().ListByFeed(ctx, int64(10)).Return([]int64{1, 3}, nil)

	got, err := svc.ResolveForFeed(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, got)
}
