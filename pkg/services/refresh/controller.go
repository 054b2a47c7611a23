package refresh

import (
	"context"
	"fmt"
	"sync"
)

type Controller interface {
	Start(ctx context.Context) error
	Cancel(ctx context.Context) error
}

type DefaultController struct {
	reloader Reloader
	config   RunnerConfig

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	runner     *Runner
}

func NewController(reloader Reloader, config RunnerConfig) *DefaultController {
	return &DefaultController{reloader: reloader, config: config}
}

// Start launches the background runner. It fails if one is already running.
func (ctrl *DefaultController) Start(ctx context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner != nil {
		return fmt.Errorf("refresh already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	ctrl.cancelFunc = cancel
	ctrl.runner = NewRunner(ctrl.reloader, ctrl.config)

	go ctrl.runner.Run(ctx)
	return nil
}

// Cancel stops the runner and waits for it to exit.
func (ctrl *DefaultController) Cancel(_ context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner == nil {
		return fmt.Errorf("refresh not running")
	}
	ctrl.cancelFunc()
	<-ctrl.runner.Done()

	ctrl.runner = nil
	ctrl.cancelFunc = nil
	return nil
}
