package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/pkg/logger"
)

// MailSender 邮件发送抽象（生产接 SMTP/第三方，默认实现仅打日志）
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailSender 日志模拟发送
type LogMailSender struct{}

func (LogMailSender) Send(_ context.Context, to, subject, _ string) error {
	logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Mailer 消费邮件队列任务
type Mailer struct {
	sender MailSender
}

func NewMailer(sender MailSender) *Mailer {
	if sender == nil {
		sender = LogMailSender{}
	}
	return &Mailer{sender: sender}
}

// HandleJob 队列适配；失败由队列按次数重试
func (m *Mailer) HandleJob(ctx context.Context, job *queue.Job) error {
	to := job.Payload["to"]
	if to == "" {
		return errors.New("mail job missing recipient")
	}
	return m.sender.Send(ctx, to, job.Payload["subject"], job.Payload["body"])
}
