package middleware

import (
	"log"

	"github.com/fatih/color"
	"github.com/nats-io/walnats"
)

var (
	colorStart   = color.New(color.FgCyan)
	colorSuccess = color.New(color.FgGreen)
	colorFailure = color.New(color.FgRed, color.Bold)
)

// Logging reports actor lifecycle events to the standard logger, with
// colored level tags matching the rest of this project's CLI output.
type Logging struct {
	walnats.BaseMiddleware

	// Logger receives formatted lines; defaults to log.Default().
	Logger *log.Logger
}

// NewLogging returns a Logging middleware writing to log.Default().
func NewLogging() *Logging {
	return &Logging{}
}

func (m *Logging) logger() *log.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return log.Default()
}

func (m *Logging) OnStart(ctx walnats.Context) func() {
	m.logger().Printf("%s actor=%s event=%s seq=%d attempt=%d",
		colorStart.Sprint("start"), ctx.ActorName, ctx.EventName, ctx.Seq, ctx.Attempts())
	return nil
}

func (m *Logging) OnSuccess(ctx walnats.OkContext) func() {
	m.logger().Printf("%s actor=%s event=%s seq=%d duration=%s",
		colorSuccess.Sprint("ok"), ctx.ActorName, ctx.EventName, ctx.Seq, ctx.Duration)
	return nil
}

func (m *Logging) OnFailure(ctx walnats.ErrorContext) func() {
	m.logger().Printf("%s actor=%s event=%s seq=%d attempt=%d err=%v",
		colorFailure.Sprint("fail"), ctx.ActorName, ctx.EventName, ctx.Seq, ctx.Attempts(), ctx.Err)
	return nil
}
