package dynamo

import (
	"context"
	"log/slog"
)

// Observers fans a step out to several observers in order.
type Observers []Observer

func (o Observers) OnStep(info StepInfo) {
	for _, obs := range o {
		obs.OnStep(info)
	}
}

type logObserver struct {
	logger *slog.Logger
	name   string
}

// LogObserver emits one debug record per accepted step.
func LogObserver(logger *slog.Logger, integrator string) Observer {
	return &logObserver{logger: logger, name: integrator}
}

func (l *logObserver) OnStep(info StepInfo) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.logger.Debug("step",
		"integrator", l.name,
		"n", info.Step,
		"t", info.Time,
		"x", info.State,
		"mode", info.Mode.String(),
		"iterations", info.Iterations,
		"stiffness", info.Stiffness,
	)
}
