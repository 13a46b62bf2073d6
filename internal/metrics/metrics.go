package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var NewUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "app_new_users_total",
	Help: "Total number of registered users.",
})

var LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "app_login_attempts_total",
	Help: "Total number of login attempts by status.",
}, []string{"status"})

var BookmarkCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "app_bookmarks_created_total",
	Help: "Total number of bookmarks created.",
})

var TagCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "app_tags_created_total",
	Help: "Total number of tags created.",
})

// AutotagOutcomesTotal tracks how the auto-tagging pipeline resolved each
// bookmark: real keywords or one of the fallback tags.
var AutotagOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "app_autotag_outcomes_total",
	Help: "Total number of auto-tagging runs by outcome.",
}, []string{"outcome"})

var SummaryGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "app_summaries_generated_total",
	Help: "Total number of AI summaries generated for bookmarks.",
})
