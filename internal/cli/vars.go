package cli

import (
	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/internal/config"
	"github.com/valter-silva-au/tasktalk/internal/dispatch"
	"github.com/valter-silva-au/tasktalk/internal/observability"
	"github.com/valter-silva-au/tasktalk/internal/sched"
	"github.com/valter-silva-au/tasktalk/internal/store"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath   string
	Cfg        *config.Config
	Store      *store.TaskStore
	Dispatcher *dispatch.Dispatcher
	Checker    *sched.ReminderChecker
	EventLog   observability.EventLog
	Logger     *log.Logger
)
