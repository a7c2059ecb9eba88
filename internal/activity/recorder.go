package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	// ErrQueueFull 写入队列已满，事件被丢弃
	ErrQueueFull = errors.New("操作日志队列已满")
	// ErrRecorderStopped Recorder 已停止，不再接收事件
	ErrRecorderStopped = errors.New("操作日志记录器已停止")
	// ErrNoActor 上下文中没有已认证的操作者
	ErrNoActor = errors.New("未找到已认证用户")
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

// Recorder 后台写入操作日志
// 请求路径只负责入队，写入由固定数量的 worker 完成，失败只记录本地日志
type Recorder struct {
	store   Store
	queue   chan *models.ActivityLog
	workers int
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	now func() time.Time
}

// NewRecorder 创建并启动记录器
func NewRecorder(store Store, workers, queueSize int) *Recorder {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	r := &Recorder{
		store:   store,
		queue:   make(chan *models.ActivityLog, queueSize),
		workers: workers,
		now:     time.Now,
	}
	r.start()
	return r
}

func (r *Recorder) start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	logger.Info("操作日志记录器已启动", zap.Int("workers", r.workers), zap.Int("queue_size", cap(r.queue)))
}

// Enqueue 提交一条日志，不会阻塞调用方
func (r *Recorder) Enqueue(log *models.ActivityLog) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrRecorderStopped
	}

	select {
	case r.queue <- log:
		return nil
	default:
		logger.Warn("操作日志队列已满，丢弃事件",
			zap.String("action", log.Action),
			zap.String("resource_type", log.ResourceType),
			zap.String("user_id", log.UserID))
		return ErrQueueFull
	}
}

// Entry 手动记录的操作日志
type Entry struct {
	Action       string
	ResourceType string
	ResourceID   *string
	Details      map[string]any
	Status       string
	IPAddress    string
	UserAgent    string
}

// Log 由业务代码直接记录操作日志，操作者取自 ctx
// 没有已认证的操作者时只输出警告，返回是否成功入队
func (r *Recorder) Log(ctx context.Context, entry Entry) bool {
	log, err := NewManualEvent(ctx, entry)
	if err != nil {
		logger.Warn("手动记录操作日志已跳过", zap.String("action", entry.Action), zap.Error(err))
		return false
	}
	return r.Enqueue(log) == nil
}

// NewManualEvent 根据手动记录的条目构建操作日志
func NewManualEvent(ctx context.Context, entry Entry) (*models.ActivityLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}
	if entry.Action == "" {
		return nil, errors.New("缺少 action")
	}

	resourceType := entry.ResourceType
	if resourceType == "" {
		resourceType = UnknownResource
	}
	status := entry.Status
	if status == "" {
		status = models.ActivityStatusSuccess
	}
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}

	return &models.ActivityLog{
		UserID:       actor.ID,
		Username:     actor.Label(),
		Action:       entry.Action,
		ResourceType: resourceType,
		ResourceID:   entry.ResourceID,
		Details:      marshalDetails(details),
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Status:       status,
	}, nil
}

// Stop 停止接收新事件，并在超时前写完队列中剩余的事件
func (r *Recorder) Stop(timeout time.Duration) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	pending := len(r.queue)
	close(r.queue)
	r.mu.Unlock()

	logger.Info("正在停止操作日志记录器", zap.Int("pending", pending))

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("操作日志记录器已停止")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("停止操作日志记录器超时: %v", timeout)
	}
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()
	for log := range r.queue {
		r.write(id, log)
	}
}

// write 写入单条日志，存储层的错误和 panic 都只记录本地日志
func (r *Recorder) write(workerID int, log *models.ActivityLog) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("写入操作日志时发生panic",
				zap.Any("panic", p),
				zap.Int("worker", workerID),
				zap.String("action", log.Action))
		}
	}()

	log.CreatedAt = r.now()
	if err := r.store.Create(context.Background(), log); err != nil {
		logger.Error("保存操作日志失败",
			zap.Error(err),
			zap.Int("worker", workerID),
			zap.String("user_id", log.UserID),
			zap.String("action", log.Action),
			zap.String("resource_type", log.ResourceType),
			zap.String("details", string(log.Details)))
	}
}

func marshalDetails(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("操作日志详情转JSON失败", zap.Error(err))
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}
