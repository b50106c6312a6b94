package handler_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/require"

	"task-manager/pkg/common/config"
	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/common/objectid"
	taskmodel "task-manager/pkg/core/task/model"
	taskdao "task-manager/pkg/core/task/repository/dao"
	usermodel "task-manager/pkg/core/user/model"
	"task-manager/pkg/core/user/service"
	"task-manager/pkg/web/router"
)

// fakeTaskRepo 内存版任务仓储，保留插入顺序以便断言
type fakeTaskRepo struct {
	tasks        map[string]*taskmodel.Task
	order        []string
	findOneCalls int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*taskmodel.Task{}}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *taskmodel.Task) error {
	if task.ID == "" {
		task.ID = objectid.New()
	}
	clone := *task
	f.tasks[task.ID] = &clone
	f.order = append(f.order, task.ID)
	return nil
}

func (f *fakeTaskRepo) FindOne(_ context.Context, id, ownerID string) (*taskmodel.Task, error) {
	f.findOneCalls++
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, commonerrors.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTaskRepo) Save(_ context.Context, task *taskmodel.Task) error {
	t, ok := f.tasks[task.ID]
	if !ok || t.OwnerID != task.OwnerID {
		return commonerrors.ErrNotFound
	}
	t.Description = task.Description
	t.Completed = task.Completed
	return nil
}

func (f *fakeTaskRepo) FindOneAndDelete(_ context.Context, id, ownerID string) (*taskmodel.Task, error) {
	f.findOneCalls++
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, commonerrors.ErrNotFound
	}
	delete(f.tasks, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return t, nil
}

func (f *fakeTaskRepo) List(_ context.Context, ownerID string, q taskdao.ListQuery) ([]taskmodel.Task, error) {
	result := []taskmodel.Task{}
	for _, id := range f.order {
		t := f.tasks[id]
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		result = append(result, *t)
	}

	if q.SortColumn != "" {
		sort.SliceStable(result, func(i, j int) bool {
			less := false
			switch q.SortColumn {
			case "description":
				less = result[i].Description < result[j].Description
			case "completed":
				less = !result[i].Completed && result[j].Completed
			case "created_at":
				less = result[i].CreatedAt.Before(result[j].CreatedAt)
			case "updated_at":
				less = result[i].UpdatedAt.Before(result[j].UpdatedAt)
			}
			if q.Descending {
				return !less
			}
			return less
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(result) {
			return []taskmodel.Task{}, nil
		}
		result = result[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}
	return result, nil
}

func (f *fakeTaskRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	var count int64
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// fakeUserRepo 内存版用户仓储；Delete级联清理任务仓储
type fakeUserRepo struct {
	users    map[string]*usermodel.User
	tokens   map[string][]string
	avatars  map[string][]byte
	taskRepo *fakeTaskRepo
}

func newFakeUserRepo(tasks *fakeTaskRepo) *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*usermodel.User{},
		tokens:   map[string][]string{},
		avatars:  map[string][]byte{},
		taskRepo: tasks,
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *usermodel.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already in use", commonerrors.ErrDuplicateEntry)
		}
	}
	if user.ID == "" {
		user.ID = objectid.New()
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*usermodel.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, commonerrors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*usermodel.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, commonerrors.ErrNotFound
}

func (f *fakeUserRepo) Save(_ context.Context, user *usermodel.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return commonerrors.ErrNotFound
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return fmt.Errorf("%w: email already in use", commonerrors.ErrDuplicateEntry)
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return commonerrors.ErrNotFound
	}
	delete(f.users, id)
	delete(f.tokens, id)
	delete(f.avatars, id)

	// 级联删除该用户拥有的全部任务
	kept := f.taskRepo.order[:0]
	for _, tid := range f.taskRepo.order {
		if f.taskRepo.tasks[tid].OwnerID == id {
			delete(f.taskRepo.tasks, tid)
			continue
		}
		kept = append(kept, tid)
	}
	f.taskRepo.order = kept
	return nil
}

func (f *fakeUserRepo) AppendAuthToken(_ context.Context, userID, token string) error {
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakeUserRepo) RemoveAuthToken(_ context.Context, userID, token string) error {
	kept := f.tokens[userID][:0]
	for _, t := range f.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	f.tokens[userID] = kept
	return nil
}

func (f *fakeUserRepo) RemoveAllAuthTokens(_ context.Context, userID string) error {
	delete(f.tokens, userID)
	return nil
}

func (f *fakeUserRepo) HasAuthToken(_ context.Context, userID, token string) (bool, error) {
	for _, t := range f.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) GetAvatar(_ context.Context, userID string) ([]byte, error) {
	data, ok := f.avatars[userID]
	if !ok || len(data) == 0 {
		return nil, commonerrors.ErrNotFound
	}
	return data, nil
}

func (f *fakeUserRepo) SetAvatar(_ context.Context, userID string, data []byte) error {
	if _, ok := f.users[userID]; !ok {
		return commonerrors.ErrNotFound
	}
	if data == nil {
		delete(f.avatars, userID)
		return nil
	}
	f.avatars[userID] = data
	return nil
}

// testApp 完整的测试装配：真实路由与认证中间件 + 内存仓储
type testApp struct {
	engine   *route.Engine
	users    *service.Service
	userRepo *fakeUserRepo
	taskRepo *fakeTaskRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	taskRepo := newFakeTaskRepo()
	return newTestAppWithTasks(t, taskRepo, taskRepo)
}

// newTestAppWithTasks 用包装过的任务仓储装配路由，底层fake仍可直接断言
func newTestAppWithTasks(t *testing.T, wired taskdao.TaskRepository, backing *fakeTaskRepo) *testApp {
	t.Helper()

	userRepo := newFakeUserRepo(backing)
	users := service.NewService(userRepo, &config.JWTAuthConfig{
		Secret: "test-secret",
		Issuer: "task-manager-test",
	})

	cfg := config.Load()
	h := server.New()
	router.RegisterAPIs(h, cfg, users, wired, nil)

	return &testApp{engine: h.Engine, users: users, userRepo: userRepo, taskRepo: backing}
}

// registerUser 通过服务层直接准备一个已登录用户
func (a *testApp) registerUser(t *testing.T, name, email string) (*usermodel.User, string) {
	t.Helper()
	user, token, err := a.users.Register(context.Background(), name, email, "red123!", 0)
	require.NoError(t, err)
	return user, token
}

func bearer(token string) string {
	return "Bearer " + token
}
