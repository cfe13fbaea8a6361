package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/flare/pkg/logger"
)

// Listener 事件监听器
type Listener interface {
	Name() string
	Handle(ctx context.Context, evt Event) error
}

// ListenerFunc 函数适配器
type ListenerFunc struct {
	ListenerName string
	Fn           func(ctx context.Context, evt Event) error
}

func (l ListenerFunc) Name() string { return l.ListenerName }

func (l ListenerFunc) Handle(ctx context.Context, evt Event) error { return l.Fn(ctx, evt) }

// Bus 进程内事件总线：启动期注册，之后只读；同步按注册顺序分发。
// 单个监听器失败（返回错误或 panic）只记日志，不影响同批其他监听器。
type Bus struct {
	listeners map[Kind][]Listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[Kind][]Listener)}
}

// Register 注册监听器（仅在进程初始化阶段调用，不支持运行期增删）
func (b *Bus) Register(kind Kind, l Listener) {
	b.listeners[kind] = append(b.listeners[kind], l)
}

// Dispatch 同步分发：生产者阻塞直到该事件全部监听器执行完毕
func (b *Bus) Dispatch(ctx context.Context, evt Event) {
	for _, l := range b.listeners[evt.Kind()] {
		b.invoke(ctx, l, evt)
	}
}

func (b *Bus) invoke(ctx context.Context, l Listener, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event listener panicked",
				zap.String("listener", l.Name()),
				zap.String("event", evt.Kind().String()),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := l.Handle(ctx, evt); err != nil {
		logger.Error("event listener failed",
			zap.String("listener", l.Name()),
			zap.String("event", evt.Kind().String()),
			zap.Error(err))
	}
}
