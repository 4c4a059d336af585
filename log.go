package gosched

import "go.uber.org/zap"

// noopLogger is the default injected into a Runtime that isn't given one
// via WithLogger. Never a package-global default shared across Runtimes —
// each Runtime gets its own *zap.Logger reference.
func noopLogger() *zap.Logger {
	return zap.NewNop()
}

func taskField(t *Task) zap.Field { return zap.Int64("task_id", t.id) }

func errField(err error) zap.Field { return zap.Error(err) }

