package revalidate

import "go.uber.org/fx"

var Module = fx.Module("revalidate",
	fx.Provide(
		fx.Annotate(NewHTTPNotifier, fx.As(new(Notifier))),
	),
)
