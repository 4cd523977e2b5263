// Package schedule runs audits periodically on a cron schedule.
package schedule
