package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/polymesh/engine/pkg/interfaces/infrastructure/log"
)

// Producer 定时出块
//
// cron 的 @every 最小粒度为 1 秒，更短的间隔会被向上取整。
type Producer struct {
	runtime  *Runtime
	interval time.Duration
	logger   log.Logger
	cron     *cron.Cron
}

// NewProducer 创建出块器
func NewProducer(rt *Runtime, interval time.Duration, logger log.Logger) *Producer {
	return &Producer{runtime: rt, interval: interval, logger: logger}
}

// Start 启动定时任务
func (p *Producer) Start() error {
	if p.cron != nil {
		return fmt.Errorf("出块器已启动")
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), p.tick)
	if err != nil {
		return fmt.Errorf("注册出块任务失败: %w", err)
	}
	p.cron = c
	c.Start()
	if p.logger != nil {
		p.logger.Infof("出块器已启动 interval=%s", p.interval)
	}
	return nil
}

// Stop 停止定时任务并等待正在执行的出块完成
func (p *Producer) Stop(ctx context.Context) error {
	if p.cron == nil {
		return nil
	}
	done := p.cron.Stop()
	p.cron = nil
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Producer) tick() {
	block, err := p.runtime.AdvanceBlock(context.Background())
	if p.logger == nil {
		return
	}
	if err != nil {
		p.logger.Errorf("出块失败: %v", err)
		return
	}
	p.logger.Debugf("出块 block=%d", block)
}
