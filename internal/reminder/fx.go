package reminder

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("reminder",
	fx.Provide(New),
	fx.Invoke(register),
)

func register(lc fx.Lifecycle, job *Job) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			job.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			job.Stop()
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
